package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"reelforge/internal/ai"
	"reelforge/internal/config"
	"reelforge/internal/handler"
	authHandler "reelforge/internal/handler/auth"
	pipelineHandler "reelforge/internal/handler/pipeline"
	"reelforge/internal/pkg/cache"
	"reelforge/internal/pkg/elevenlabs"
	"reelforge/internal/pkg/fal"
	"reelforge/internal/pkg/jwt"
	"reelforge/internal/pkg/mongodb"
	"reelforge/internal/pkg/pricing"
	"reelforge/internal/pkg/shotstack"
	"reelforge/internal/pkg/storagefactory"
	authRepo "reelforge/internal/repository/auth"
	libraryRepo "reelforge/internal/repository/library"
	pipelineRepo "reelforge/internal/repository/pipeline"
	"reelforge/internal/server/middleware"
	"reelforge/internal/service"
	pipelineService "reelforge/internal/service/pipeline"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 MongoDB (可选)
	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			// 创建索引
			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选，仅价格缓存使用)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 设置路由
	srv.setupRoutes()

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查：就绪探测覆盖已配置的外部依赖
	readyChecks := map[string]handler.ReadyCheck{}
	if s.mongo != nil {
		readyChecks["mongodb"] = s.mongo.Ping
	}
	if s.redis != nil {
		readyChecks["redis"] = s.redis.Ping
	}
	healthHandler := handler.NewHealthHandler(readyChecks)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if s.mongo == nil {
		log.Warn().Msg("MongoDB not configured, API endpoints disabled")
		return
	}

	// API v1
	v1 := s.engine.Group("/api/v1")

	// 从配置读取JWT参数，如果没有配置则使用默认值
	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}

	// 认证接口（公开）
	userRepo := authRepo.NewUserRepo(s.mongo.Database())
	authSvc := service.NewAuthService(userRepo, jwtSecret, accessTokenExpiry)
	authHdl := authHandler.NewHandler(authSvc)
	v1.POST("/auth/login", authHdl.Login)

	// 流水线接口（JWT保护）
	protected := v1.Group("")
	protected.Use(middleware.Auth(jwt.NewJWT(jwtSecret, accessTokenExpiry)))

	if err := s.setupPipelineRoutes(protected); err != nil {
		log.Warn().Err(err).Msg("pipeline subsystem not fully configured, pipeline endpoints disabled")
	}
}

// setupPipelineRoutes 构建流水线依赖并注册路由
// 任何一个外部服务客户端创建失败都视为配置错误，整组接口不注册
func (s *Server) setupPipelineRoutes(g *gin.RouterGroup) error {
	db := s.mongo.Database()

	store, err := storagefactory.NewStorage(context.Background(), &s.cfg.Storage)
	if err != nil {
		return err
	}

	writer, err := ai.NewScriptWriter(context.Background(), &s.cfg.AI)
	if err != nil {
		return err
	}

	speech, err := elevenlabs.NewClient(&s.cfg.ElevenLabs)
	if err != nil {
		return err
	}

	visual, err := fal.NewClient(&s.cfg.Fal)
	if err != nil {
		return err
	}

	renderer, err := shotstack.NewClient(&s.cfg.Shotstack)
	if err != nil {
		return err
	}

	resolution := s.cfg.Shotstack.Resolution
	if resolution == "" {
		resolution = "hd"
	}

	svc := pipelineService.NewService(pipelineService.Deps{
		Projects:    pipelineRepo.NewProjectRepo(db),
		Scenes:      pipelineRepo.NewSceneRepo(db),
		AudioAssets: pipelineRepo.NewAudioAssetRepo(db),
		RenderJobs:  pipelineRepo.NewRenderJobRepo(db),
		Locations:   libraryRepo.NewLocationRepo(db),
		Characters:  libraryRepo.NewCharacterRepo(db),
		Topics:      libraryRepo.NewTopicRepo(db),
		Actions:     libraryRepo.NewActionRepo(db),
		Cameras:     libraryRepo.NewCameraMovementRepo(db),
		Motions:     libraryRepo.NewCharacterMotionRepo(db),
		Writer:      writer,
		Speech:      speech,
		Visual:      visual,
		Renderer:    renderer,
		Pricer:      pricing.NewService(&s.cfg.Pricing, s.redis),
		Store:       store,
	}, &s.cfg.Pipeline, resolution)

	// 进程重启后恢复未完成的渲染轮询
	if err := svc.Poller().Recover(context.Background()); err != nil {
		log.Warn().Err(err).Msg("failed to recover pending render jobs")
	}

	hdl := pipelineHandler.NewHandler(svc)

	g.POST("/projects", hdl.CreateProject)
	g.GET("/projects", hdl.ListProjects)
	g.GET("/projects/:id", hdl.GetProject)
	g.PATCH("/projects/:id", hdl.UpdateProject)
	g.DELETE("/projects/:id", hdl.DeleteProject)

	g.POST("/projects/:id/script", hdl.GenerateScript)
	g.POST("/projects/:id/voiceover", hdl.GenerateVoiceover)
	g.POST("/projects/:id/videos", hdl.GenerateSceneVideos)
	g.POST("/projects/:id/music", hdl.GenerateMusic)
	g.POST("/projects/:id/assemble", hdl.AssembleVideo)
	g.GET("/projects/:id/render", hdl.GetRenderStatus)

	g.GET("/projects/:id/scenes", hdl.GetScenes)
	g.PATCH("/projects/:id/scenes/:scene_id", hdl.UpdateScene)
	g.POST("/projects/:id/scenes/:scene_id/approve", hdl.ApproveScene)
	g.POST("/projects/:id/scenes/:scene_id/image", hdl.GenerateSceneImage)

	g.GET("/projects/:id/audio-assets", hdl.ListAudioAssets)
	g.DELETE("/audio-assets/:id", hdl.DeleteAudioAsset)

	return nil
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 关闭连接
		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
