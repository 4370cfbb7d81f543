// Package assistant provides the estate assistant server implementation.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kova-io/estate-x/internal/assistant/biz"
	"github.com/kova-io/estate-x/internal/assistant/extract"
	"github.com/kova-io/estate-x/internal/assistant/handler"
	"github.com/kova-io/estate-x/internal/assistant/router"
	"github.com/kova-io/estate-x/internal/assistant/store"
	"github.com/kova-io/estate-x/internal/model"
	"github.com/kova-io/estate-x/pkg/app"
	"github.com/kova-io/estate-x/pkg/component/milvus"
	"github.com/kova-io/estate-x/pkg/component/mysql"
	"github.com/kova-io/estate-x/pkg/llm"

	// 导入 LLM 供应商以自动注册
	_ "github.com/kova-io/estate-x/pkg/llm/ollama"
	_ "github.com/kova-io/estate-x/pkg/llm/openai"

	assistantopts "github.com/kova-io/estate-x/pkg/options/assistant"
	llmopts "github.com/kova-io/estate-x/pkg/options/llm"
	logopts "github.com/kova-io/estate-x/pkg/options/logger"
	milvusopts "github.com/kova-io/estate-x/pkg/options/milvus"
	mysqlopts "github.com/kova-io/estate-x/pkg/options/mysql"
	redisopts "github.com/kova-io/estate-x/pkg/options/redis"
	httpopts "github.com/kova-io/estate-x/pkg/options/server/http"
	"github.com/kova-io/estate-x/pkg/server"
)

// Name is the name of the application.
const Name = "estate-assistant"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MySQLOptions     *mysqlopts.Options
	MilvusOptions    *milvusopts.Options
	RedisOptions     *redisopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	AssistantOptions *assistantopts.Options
	ShutdownTimeout  time.Duration
}

// Server represents the assistant server.
type Server struct {
	srv             *server.Server
	shutdownTimeout time.Duration
	closers         []func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	// 1. 初始化日志
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting estate assistant service...")

	var closers []func()

	// 2. 初始化 MySQL 并迁移表结构
	mysqlClient, err := mysql.New(ctx, cfg.MySQLOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mysql: %w", err)
	}
	closers = append(closers, func() { _ = mysqlClient.Close() })
	if err := mysqlClient.DB().AutoMigrate(&model.Document{}, &model.Conversation{}, &model.Message{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("MySQL initialized")

	// 3. 初始化向量存储
	var vectors store.VectorStore
	switch cfg.AssistantOptions.VectorStore {
	case assistantopts.VectorStoreMemory:
		vectors = store.NewMemoryStore()
		logger.Warn("Using in-memory vector store, index is lost on restart")
	default:
		milvusClient, err := milvus.New(cfg.MilvusOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		closers = append(closers, func() { _ = milvusClient.Close(context.Background()) })
		vectors = store.NewMilvusStore(milvusClient)
		logger.Infow("Milvus client initialized", "address", cfg.MilvusOptions.Address)
	}
	registry := store.NewCollectionRegistry(vectors, cfg.AssistantOptions.CollectionPrefix, cfg.AssistantOptions.EmbeddingDim)

	// 4. 初始化 Redis 检索缓存，连不上只降级不报错
	var searchCache *biz.SearchCache
	if cfg.RedisOptions.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:         cfg.RedisOptions.Addr(),
			Password:     cfg.RedisOptions.Password,
			DB:           cfg.RedisOptions.Database,
			MaxRetries:   cfg.RedisOptions.MaxRetries,
			PoolSize:     cfg.RedisOptions.PoolSize,
			DialTimeout:  cfg.RedisOptions.DialTimeout,
			ReadTimeout:  cfg.RedisOptions.ReadTimeout,
			WriteTimeout: cfg.RedisOptions.WriteTimeout,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnw("failed to connect to redis, search cache disabled", "error", err.Error())
			_ = redisClient.Close()
		} else {
			searchCache = biz.NewSearchCache(redisClient, &biz.SearchCacheConfig{
				Enabled: true,
				TTL:     cfg.RedisOptions.CacheTTL,
			})
			closers = append(closers, func() { _ = redisClient.Close() })
			logger.Infow("Redis search cache initialized", "addr", cfg.RedisOptions.Addr(), "ttl", cfg.RedisOptions.CacheTTL)
		}
	} else {
		logger.Info("Search cache is disabled")
	}

	// 5. 初始化 LLM 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized", "provider", cfg.EmbeddingOptions.Provider, "model", cfg.EmbeddingOptions.Model)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized", "provider", cfg.ChatOptions.Provider, "model", cfg.ChatOptions.Model)

	// 6. 初始化文件存储与文本提取
	fileStore, err := store.NewFileStore(cfg.AssistantOptions.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}
	extractor := extract.New(extract.Options{
		OCRLanguages:  cfg.AssistantOptions.OCRLanguages,
		TesseractPath: cfg.AssistantOptions.TesseractPath,
	})

	// 7. 初始化 Biz 层
	indexer := biz.NewIndexer(embedProvider, vectors, registry, searchCache, biz.IndexerConfig{
		ChunkSize:      cfg.AssistantOptions.ChunkSize,
		TopK:           cfg.AssistantOptions.TopK,
		ScoreThreshold: cfg.AssistantOptions.ScoreThreshold,
	})
	engine := biz.NewEngine(chatProvider, indexer, biz.EngineConfig{
		Persona:       cfg.AssistantOptions.Persona,
		HistoryWindow: cfg.AssistantOptions.HistoryWindow,
		ModelName:     cfg.ChatOptions.Model,
	})
	service := biz.NewService(
		store.NewDocumentStore(mysqlClient.DB()),
		store.NewConversationStore(mysqlClient.DB()),
		fileStore,
		extractor,
		indexer,
		engine,
		biz.NewSummarizer(chatProvider),
		biz.NewClassifier(chatProvider),
		cfg.AssistantOptions.HistoryWindow,
	)
	logger.Info("Assistant service initialized")

	// 8. 初始化 HTTP 服务器并注册路由
	httpServer := server.New(cfg.HTTPOptions)
	router.Register(httpServer.Engine(), handler.NewChatHandler(service), handler.NewDocumentHandler(service))

	logger.Info("Estate assistant service is ready")
	return &Server{
		srv:             httpServer,
		shutdownTimeout: cfg.ShutdownTimeout,
		closers:         closers,
	}, nil
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		for _, closer := range s.closers {
			closer()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return <-errCh
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  HTTP: %s\n", cfg.HTTPOptions.Addr)
	fmt.Printf("  Vector store: %s\n", cfg.AssistantOptions.VectorStore)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)
}
