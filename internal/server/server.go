package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planner/docs"
	"planner/internal/board"
	"planner/internal/config"
	"planner/internal/gateway"
	"planner/internal/handler"
	"planner/internal/middleware"
	"planner/internal/repository"
	"planner/internal/session"
	"planner/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"
)

const bootstrapTimeout = 10 * time.Second

type Server struct {
	Engine  *gin.Engine
	Config  *config.Config
	Logger  *log.Logger
	Session *session.Session
	Client  *gateway.Client
	Store   *store.Store
	Tracker *board.Tracker
}

// Init opens the configured storage, wires the companion together and
// restores any persisted session.
func Init(cfg *config.Config) (*Server, error) {
	logger := cfg.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	storage, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to open storage: %w", err)
	}

	s := New(cfg, storage, logger)
	if err := s.Bootstrap(ctx); err != nil {
		logger.WithError(err).Warn("⚠️  session bootstrap did not finish")
	}
	return s, nil
}

// New wires the companion on top of an already opened storage.
func New(cfg *config.Config, storage repository.LocalStorage, logger *log.Logger) *Server {
	sess := session.New(storage, logger.WithField("component", "session"))
	client := gateway.New(cfg.APIBase(), sess,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		gateway.WithLogger(logger.WithField("component", "gateway")),
	)
	st := store.New(client, logger.WithField("component", "store"))
	tracker := board.NewTracker()

	s := &Server{
		Config:  cfg,
		Logger:  logger,
		Session: sess,
		Client:  client,
		Store:   st,
		Tracker: tracker,
	}
	s.Engine = s.routes()
	return s
}

// Bootstrap confirms a persisted token and, when it holds, loads the initial data.
func (s *Server) Bootstrap(ctx context.Context) error {
	if err := s.Session.Bootstrap(ctx, s.Client); err != nil {
		return err
	}
	if !s.Session.IsAuthenticated() {
		return nil
	}
	return s.Store.Refresh(ctx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(s.Logger))
	r.Use(middleware.Recovery(s.Logger))
	r.Use(middleware.RateLimiter(rate.Limit(s.Config.RateLimitRPS), s.Config.RateLimitBurst))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(s.Session, s.Client, s.Store, s.Tracker, s.Logger)
	taskHandler := handler.NewTaskHandler(s.Store)
	boardHandler := handler.NewBoardHandler(s.Store)
	dragHandler := handler.NewDragHandler(s.Store, s.Tracker, s.Logger)
	planHandler := handler.NewPlanHandler(s.Store)
	teamHandler := handler.NewTeamHandler(s.Store)
	stateHandler := handler.NewStateHandler(s.Store)

	// Public routes
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "session": s.Session.State()})
	})
	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/session/login", sessionHandler.Login)
	r.GET("/session", sessionHandler.Status)
	r.POST("/session/logout", sessionHandler.Logout)

	// Protected routes - require a confirmed session
	authorized := r.Group("/")
	authorized.Use(middleware.SessionGuard(s.Session))
	{
		authorized.POST("/refresh", stateHandler.Refresh)
		authorized.GET("/summary", stateHandler.Summary)
		authorized.GET("/notices", stateHandler.Notices)

		// Task routes
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/transitions", taskHandler.Transitions)
		authorized.GET("/tasks/:id", taskHandler.Get)
		authorized.PATCH("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/complete", taskHandler.Complete)
		authorized.POST("/tasks/:id/move", taskHandler.Move)

		// Board routes
		authorized.GET("/boards", boardHandler.List)
		authorized.POST("/boards", boardHandler.Create)
		authorized.DELETE("/boards/:id", boardHandler.Delete)
		authorized.POST("/boards/:id/select", boardHandler.Select)
		authorized.POST("/boards/:id/groups", boardHandler.CreateGroup)
		authorized.GET("/view", boardHandler.View)

		// Drag routes
		authorized.GET("/drag", dragHandler.State)
		authorized.POST("/drag/start", dragHandler.Start)
		authorized.POST("/drag/over", dragHandler.Over)
		authorized.POST("/drag/end", dragHandler.End)
		authorized.POST("/drag/cancel", dragHandler.Cancel)

		// Plan routes
		authorized.GET("/plans", planHandler.List)
		authorized.GET("/plans/:date", planHandler.Get)
		authorized.PUT("/plans/:date", planHandler.Save)

		// Team routes
		authorized.GET("/teams", teamHandler.List)
		authorized.POST("/teams", teamHandler.Create)
		authorized.POST("/teams/:id/select", teamHandler.Select)
		authorized.POST("/teams/:id/members", teamHandler.AddMember)
		authorized.GET("/permissions", teamHandler.Permissions)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Logger.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Fatalf("❌ Server forced to shutdown: %s", err)
	}
	if err := s.Session.Close(); err != nil {
		s.Logger.WithError(err).Warn("failed to close storage")
	}

	s.Logger.Info("✅ Server exited properly")
}
