package app

import (
	"net/http"
	"time"

	"gpacalc/internal/advice"
	"gpacalc/internal/config"
	"gpacalc/internal/session"
	"gpacalc/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Server struct {
	Config         config.Config
	SessionManager *session.Manager
	Advice         *advice.Gateway
	Hub            *websocket.Hub
	Logger         *zap.Logger
}

func NewServer(cfg config.Config, logger *zap.Logger) *Server {
	provider := advice.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, &http.Client{})
	return NewServerWithProvider(cfg, provider, logger)
}

// NewServerWithProvider 允许替换外部建议服务
func NewServerWithProvider(cfg config.Config, provider advice.Provider, logger *zap.Logger) *Server {
	sessions := session.NewManager(logger)
	gateway := advice.NewGateway(provider, logger)

	return &Server{
		Config:         cfg,
		SessionManager: sessions,
		Advice:         gateway,
		Hub: websocket.NewHub(sessions, gateway, websocket.Config{
			RevealDelay:   cfg.RevealDelay,
			AdviceTimeout: cfg.AdviceTimeout,
		}, logger),
		Logger: logger,
	}
}

// Router 构建 HTTP 路由，调用方需另行启动 Hub.Run
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.Logger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		websocket.ServeWs(s.Hub, w, r)
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Use(middleware.AllowContentType("application/json"))
		ar.Get("/grades", s.handleGrades)
		ar.Post("/gpa", s.handleCompute)
		ar.Post("/advice", s.handleAdvice)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("HTTP request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("requestID", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
