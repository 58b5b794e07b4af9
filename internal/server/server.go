package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drbn68/ai-medical-imaging-agent/internal/config"
	"github.com/drbn68/ai-medical-imaging-agent/internal/handler"
	"github.com/drbn68/ai-medical-imaging-agent/internal/llm"
	"github.com/drbn68/ai-medical-imaging-agent/internal/search"
	"github.com/drbn68/ai-medical-imaging-agent/internal/service"
	"github.com/drbn68/ai-medical-imaging-agent/pkg/utils"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.LoadHTMLGlob("web/templates/*")

	completion := llm.NewClient(&cfg.LLM, log)
	searcher := search.NewDuckDuckGo(cfg.Search.MaxResults, cfg.Search.Timeout, log)
	analysisService := service.NewAnalysisService(completion, searcher, nil, log)
	ingestor := utils.NewImageIngestor(cfg.App.MaxUploadSize, log)

	h := handler.NewHandler(analysisService, ingestor, log)

	router.GET("/", h.GetUI)
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/analyze", h.AnalyzeImage)
	}

	router.Static("/static", "./web/static")

	server := &Server{
		httpServer: &http.Server{
			Addr:        cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:     router,
			ReadTimeout: 30 * time.Second,
			// The handler blocks on the model call, so the write timeout has
			// to cover a full completion round trip.
			WriteTimeout:   180 * time.Second,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	return server, nil
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
