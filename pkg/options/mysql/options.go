// Package mysql provides options for the MySQL connection.
package mysql

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kova-io/estate-x/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options defines configuration options for MySQL.
type Options struct {
	Host                  string        `json:"host" mapstructure:"host"`
	Port                  int           `json:"port" mapstructure:"port"`
	Username              string        `json:"username" mapstructure:"username"`
	Password              string        `json:"-" mapstructure:"password"`
	Database              string        `json:"database" mapstructure:"database"`
	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`
	LogLevel              int           `json:"log-level" mapstructure:"log-level"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Host:                  "127.0.0.1",
		Port:                  3306,
		Username:              "root",
		Database:              "estate",
		MaxIdleConnections:    10,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: 10 * time.Second,
		LogLevel:              1, // Silent
	}
}

// AddFlags adds flags for MySQL options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Host, options.Join(prefixes...)+"mysql.host", o.Host, "MySQL host.")
	fs.IntVar(&o.Port, options.Join(prefixes...)+"mysql.port", o.Port, "MySQL port.")
	fs.StringVar(&o.Username, options.Join(prefixes...)+"mysql.username", o.Username, "MySQL username.")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"mysql.password", o.Password, "MySQL password (prefer MYSQL_PASSWORD env var).")
	fs.StringVar(&o.Database, options.Join(prefixes...)+"mysql.database", o.Database, "MySQL database.")
	fs.IntVar(&o.MaxIdleConnections, options.Join(prefixes...)+"mysql.max-idle-connections", o.MaxIdleConnections, "MySQL max idle connections.")
	fs.IntVar(&o.MaxOpenConnections, options.Join(prefixes...)+"mysql.max-open-connections", o.MaxOpenConnections, "MySQL max open connections.")
	fs.DurationVar(&o.MaxConnectionLifeTime, options.Join(prefixes...)+"mysql.max-connection-life-time", o.MaxConnectionLifeTime, "MySQL max connection life time.")
	fs.IntVar(&o.LogLevel, options.Join(prefixes...)+"mysql.log-level", o.LogLevel, "MySQL gorm log level.")
}

// Validate validates the options. An empty password falls back to the
// MYSQL_PASSWORD environment variable.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	if o.Password == "" {
		o.Password = os.Getenv("MYSQL_PASSWORD")
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("mysql host is required"))
	}
	if o.Database == "" {
		errs = append(errs, fmt.Errorf("mysql database is required"))
	}
	return errs
}

// DSN builds the MySQL data source name.
func (o *Options) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		o.Username, o.Password, o.Host, o.Port, o.Database)
}
