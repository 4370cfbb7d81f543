// Package mysql wraps the gorm MySQL connection used by the metadata stores.
package mysql

import (
	"context"
	"fmt"

	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	mysqlopts "github.com/kova-io/estate-x/pkg/options/mysql"
)

// Client wraps gorm.DB and exposes it for the store layer.
type Client struct {
	db   *gorm.DB
	opts *mysqlopts.Options
}

// New opens a MySQL connection with the configured pool settings and
// verifies it with a ping.
func New(ctx context.Context, opts *mysqlopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("mysql options cannot be nil")
	}

	db, err := gorm.Open(mysqldriver.Open(opts.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(opts.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConnections)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConnections)
	sqlDB.SetConnMaxLifetime(opts.MaxConnectionLifeTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	return &Client{db: db, opts: opts}, nil
}

// DB returns the underlying gorm database.
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close closes the connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogLevel(level int) logger.LogLevel {
	switch level {
	case 2:
		return logger.Error
	case 3:
		return logger.Warn
	case 4:
		return logger.Info
	default:
		return logger.Silent
	}
}
