// Package options contains flags and options for initializing the assistant server.
package options

import (
	"time"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	assistantsvc "github.com/kova-io/estate-x/internal/assistant"
	"github.com/kova-io/estate-x/pkg/app/cliflag"
	assistantopts "github.com/kova-io/estate-x/pkg/options/assistant"
	llmopts "github.com/kova-io/estate-x/pkg/options/llm"
	logopts "github.com/kova-io/estate-x/pkg/options/logger"
	milvusopts "github.com/kova-io/estate-x/pkg/options/milvus"
	mysqlopts "github.com/kova-io/estate-x/pkg/options/mysql"
	redisopts "github.com/kova-io/estate-x/pkg/options/redis"
	httpopts "github.com/kova-io/estate-x/pkg/options/server/http"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MySQLOptions contains MySQL database configuration.
	MySQLOptions *mysqlopts.Options `json:"mysql" mapstructure:"mysql"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// RedisOptions contains Redis cache configuration.
	RedisOptions *redisopts.Options `json:"redis" mapstructure:"redis"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// AssistantOptions contains assistant domain configuration.
	AssistantOptions *assistantopts.Options `json:"assistant" mapstructure:"assistant"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MySQLOptions:     mysqlopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		RedisOptions:     redisopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		AssistantOptions: assistantopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// Flags returns flags for a specific server by section name.
func (o *ServerOptions) Flags() (fss cliflag.NamedFlagSets) {
	o.HTTPOptions.AddFlags(fss.FlagSet("http"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.MySQLOptions.AddFlags(fss.FlagSet("mysql"))
	o.MilvusOptions.AddFlags(fss.FlagSet("milvus"))
	o.RedisOptions.AddFlags(fss.FlagSet("redis"))
	o.EmbeddingOptions.AddFlags(fss.FlagSet("embedding"), "embedding.")
	o.ChatOptions.AddFlags(fss.FlagSet("chat"), "chat.")
	o.AssistantOptions.AddFlags(fss.FlagSet("assistant"))

	fs := fss.FlagSet("misc")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	return fss
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MySQLOptions.Validate()...)
	if o.AssistantOptions.VectorStore == assistantopts.VectorStoreMilvus {
		errs = append(errs, o.MilvusOptions.Validate()...)
	}
	errs = append(errs, o.RedisOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.AssistantOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds an assistantsvc.Config based on ServerOptions.
func (o *ServerOptions) Config() (*assistantsvc.Config, error) {
	return &assistantsvc.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MySQLOptions:     o.MySQLOptions,
		MilvusOptions:    o.MilvusOptions,
		RedisOptions:     o.RedisOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		AssistantOptions: o.AssistantOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
