package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boardengine/db"
	"boardengine/internal/activity"
	"boardengine/internal/config"
	"boardengine/internal/handler"
	"boardengine/internal/logger"
	"boardengine/internal/middleware"
	"boardengine/internal/migration"
	"boardengine/internal/presence"
	"boardengine/internal/realtime"
	"boardengine/internal/repository"
	"boardengine/internal/schema"
	"boardengine/internal/view"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine  *gin.Engine
	DB      *gorm.DB
	Config  *config.Config
	Log     *zap.Logger
	hub     *realtime.Hub
	tracker *presence.Tracker
}

func Init(cfg *config.Config) (*Server, error) {
	log, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := db.Migrate(databaseURL(cfg)); err != nil {
		return nil, err
	}
	log.Info("database schema up to date")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	boardRepo := repository.NewBoardRepository(gormDB)
	columnRepo := repository.NewColumnRepository(gormDB)
	groupRepo := repository.NewGroupRepository(gormDB)
	itemRepo := repository.NewItemRepository(gormDB)
	updateRepo := repository.NewUpdateRepository(gormDB)
	viewRepo := repository.NewViewRepository(gormDB)
	memberRepo := repository.NewMemberRepository(gormDB)

	// Domain services
	registry := schema.NewRegistry(columnRepo)
	viewEngine := view.New(cfg.Locale)
	migrationEngine := migration.NewEngine(boardRepo, itemRepo, registry, log)
	ledger := activity.NewLedger(updateRepo, itemRepo, log)
	hub := realtime.NewHub(log)
	tracker := presence.NewTracker(cfg.PresenceTTL, hub, log)

	// Handlers
	userHandler := handler.NewUserHandler(userRepo, cfg.JWTSecret)
	boardHandler := handler.NewBoardHandler(boardRepo, columnRepo, memberRepo, hub)
	columnHandler := handler.NewColumnHandler(columnRepo)
	groupHandler := handler.NewGroupHandler(groupRepo, boardRepo, memberRepo)
	itemHandler := handler.NewItemHandler(itemRepo, viewRepo, boardRepo, memberRepo, registry, viewEngine, hub)
	viewHandler := handler.NewViewHandler(viewRepo)
	activityHandler := handler.NewActivityHandler(ledger, itemRepo, boardRepo, memberRepo, hub)
	migrationHandler := handler.NewMigrationHandler(migrationEngine, itemRepo, boardRepo, memberRepo, hub)
	presenceHandler := handler.NewPresenceHandler(tracker, hub, boardRepo, memberRepo, userRepo, log)
	memberHandler := handler.NewMemberHandler(memberRepo, userRepo, boardRepo)

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/me", userHandler.Me)

		// Boards
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards", boardHandler.GetAll)
		authorized.GET("/boards/:id", boardHandler.GetByID)
		authorized.PUT("/boards/:id", boardHandler.Update)
		authorized.POST("/boards/:id/archive", boardHandler.Archive)
		authorized.DELETE("/boards/:id", boardHandler.Delete)

		// Sharing
		authorized.POST("/boards/:id/share", memberHandler.Share)
		authorized.DELETE("/boards/:id/share/:user_id", memberHandler.Remove)
		authorized.GET("/boards/:id/members", memberHandler.List)

		// Column schema per board type
		authorized.GET("/board-types/:board_type/columns", columnHandler.GetByBoardType)
		authorized.POST("/columns", columnHandler.Create)
		authorized.PUT("/columns/:id", columnHandler.Update)
		authorized.POST("/columns/reorder", columnHandler.Reorder)
		authorized.DELETE("/columns/:id", columnHandler.Delete)

		// Groups
		authorized.POST("/boards/:id/groups", groupHandler.Create)
		authorized.GET("/boards/:id/groups", groupHandler.GetByBoardID)
		authorized.PUT("/groups/:id", groupHandler.Update)
		authorized.DELETE("/groups/:id", groupHandler.Delete)

		// Items
		authorized.POST("/boards/:id/items", itemHandler.Create)
		authorized.GET("/boards/:id/items", itemHandler.GetByBoardID)
		authorized.POST("/boards/:id/items/query", itemHandler.Query)
		authorized.GET("/boards/:id/items/search", itemHandler.Search)
		authorized.GET("/items/:id", itemHandler.GetByID)
		authorized.PATCH("/items/:id", itemHandler.Update)
		authorized.POST("/items/:id/move", itemHandler.Move)
		authorized.POST("/items/:id/duplicate", itemHandler.Duplicate)
		authorized.POST("/boards/:id/items/bulk-duplicate", itemHandler.BulkDuplicate)
		authorized.DELETE("/items/:id", itemHandler.Delete)

		// Cross-board migration
		authorized.POST("/migration/preview", migrationHandler.PreviewMapping)
		authorized.POST("/items/:id/move-to-board", migrationHandler.MoveToBoard)
		authorized.POST("/boards/:id/items/bulk-move", migrationHandler.BulkMove)

		// Activity ledger
		authorized.GET("/items/:id/activity", activityHandler.ListByItem)
		authorized.POST("/items/:id/comments", activityHandler.Comment)
		authorized.POST("/activity/:id/rollback", activityHandler.Rollback)
		authorized.GET("/activity", activityHandler.ListByUser)
		authorized.GET("/activity/recent", activityHandler.ListRecent)

		// Views
		authorized.POST("/views", viewHandler.Create)
		authorized.GET("/board-types/:board_type/views", viewHandler.GetForUser)
		authorized.PUT("/views/:id", viewHandler.Update)
		authorized.DELETE("/views/:id", viewHandler.Delete)

		// Presence
		authorized.POST("/boards/:id/presence", presenceHandler.Heartbeat)
		authorized.GET("/boards/:id/presence", presenceHandler.List)
		authorized.DELETE("/boards/:id/presence", presenceHandler.Leave)
		authorized.GET("/boards/:id/ws", presenceHandler.Subscribe)
	}

	return &Server{
		Engine:  r,
		DB:      gormDB,
		Config:  cfg,
		Log:     log,
		hub:     hub,
		tracker: tracker,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.hub.Run()
	go s.tracker.Run(ctx)

	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Info("server listening", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.Log.Fatal("forced shutdown", zap.Error(err))
	}

	s.Log.Info("server exited")
}

func databaseURL(cfg *config.Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(cfg.DBUser), url.QueryEscape(cfg.DBPassword),
		cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
}
