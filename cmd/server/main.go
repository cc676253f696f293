package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-ranker/internal/api/handler"
	"resume-ranker/internal/api/router"
	"resume-ranker/internal/config"
	"resume-ranker/internal/constants"
	appLogger "resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/processor"
	"resume-ranker/internal/storage"
	"resume-ranker/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var (
	version     = "1.0.0"         //nolint:gochecknoglobals
	serviceName = "resume-ranker" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	appLogger.Init(appLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	// Hertz的日志走同一个zerolog实例
	glog.SetLogger(hertzadapter.From(appLogger.Logger))
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Endpoint:     cfg.Tracing.Endpoint,
		SamplerRatio: cfg.Tracing.SamplerRatio,
		ServiceName:  serviceName,
		Version:      version,
	})
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	if cfg.Tracing.Enabled {
		glog.Info("链路追踪初始化成功")
	}

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(appLogger.Logger))
	if err != nil {
		glog.Fatalf("创建Eino PDF提取器失败: %v", err)
	}
	textExtractor := parser.NewTextExtractor(pdfExtractor)
	glog.Info("文本提取器初始化成功")

	skillMatcher, err := parser.NewSkillMatcher(cfg.Skills.Vocabulary)
	if err != nil {
		glog.Fatalf("编译技能词表失败: %v", err)
	}
	glog.Infof("技能词表加载成功，共%d项", len(skillMatcher.Vocabulary()))

	nerClient, err := parser.NewNERClient(cfg.NER.BaseURL, cfg.NER.Model,
		cfg.NER.FallbackModel, timeoutOrDefault(cfg.NER.TimeoutSeconds))
	if err != nil {
		glog.Fatalf("初始化NER客户端失败: %v", err)
	}
	// 预加载模型，首选不可用时客户端内部回退到兜底模型
	if err := nerClient.EnsureModel(ctx); err != nil {
		glog.Fatalf("NER模型加载失败: %v", err)
	}
	glog.Info("NER客户端初始化成功")

	embedder, err := parser.NewHTTPTextEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.Model,
		cfg.Embedding.Pooling, cfg.Embedding.MaxTokens, cfg.Embedding.Dimensions,
		timeoutOrDefault(cfg.Embedding.TimeoutSeconds))
	if err != nil {
		glog.Fatalf("初始化嵌入客户端失败: %v", err)
	}
	glog.Infof("嵌入客户端初始化成功 (model=%s, pooling=%s)", embedder.Model(), embedder.Pooling())

	var summarizer processor.Summarizer
	if cfg.Summarizer.Enabled {
		summarizerClient, err := parser.NewSummarizerClient(cfg.Summarizer.BaseURL,
			cfg.Summarizer.Model, cfg.Summarizer.MinLength, cfg.Summarizer.MaxLength,
			timeoutOrDefault(cfg.Summarizer.TimeoutSeconds))
		if err != nil {
			glog.Fatalf("初始化摘要客户端失败: %v", err)
		}
		summarizer = summarizerClient
		glog.Info("摘要客户端初始化成功")
	} else {
		glog.Info("摘要功能未启用")
	}

	jdCache, closeCache, err := newJDVectorCache(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化JD向量缓存失败: %v", err)
	}
	defer closeCache()

	scorer, err := processor.NewEmbeddingSimilarityScorer(embedder, jdCache)
	if err != nil {
		glog.Fatalf("初始化相似度计算器失败: %v", err)
	}

	store := storage.NewCandidateStore()

	candidateProcessor, err := processor.NewCandidateProcessor(&processor.Components{
		Extractor:  textExtractor,
		Recognizer: nerClient,
		Skills:     skillMatcher,
		Scorer:     scorer,
		Summarizer: summarizer,
		Store:      store,
	}, processor.Settings{MaxDocumentBytes: cfg.MaxFileSizeBytes()})
	if err != nil {
		glog.Fatalf("初始化流水线失败: %v", err)
	}
	glog.Info("候选人处理流水线初始化成功")

	candidateHandler := handler.NewCandidateHandler(cfg, candidateProcessor)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, candidateHandler)
	glog.Info("HTTP路由注册成功")

	go func() {
		glog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("追踪提供器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// newJDVectorCache 按配置选择缓存后端，默认内存
func newJDVectorCache(ctx context.Context, cfg *config.Config) (storage.JDVectorCache, func(), error) {
	if cfg.JDCache.Backend == "redis" {
		ttl := constants.DefaultJDCacheTTL
		if cfg.JDCache.TTLMinutes > 0 {
			ttl = time.Duration(cfg.JDCache.TTLMinutes) * time.Minute
		}
		redisCache, err := storage.NewRedisJDCache(ctx, cfg.JDCache.Redis, ttl)
		if err != nil {
			return nil, nil, err
		}
		glog.Infof("JD向量缓存使用Redis后端: %s", cfg.JDCache.Redis.Address)
		return redisCache, func() {
			if err := redisCache.Close(); err != nil {
				glog.Warnf("关闭Redis连接失败: %v", err)
			}
		}, nil
	}
	glog.Info("JD向量缓存使用内存后端")
	return storage.NewMemoryJDCache(), func() {}, nil
}

func timeoutOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return constants.DefaultRequestTimeout
	}
	return time.Duration(seconds) * time.Second
}
