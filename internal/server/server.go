package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/payment-relay/internal/service/notifier"
	"github.com/vladislavdragonenkov/payment-relay/internal/service/preference"
)

// Server — HTTP-фасад relay: фронт создаёт preference, провайдер шлёт вебхуки.
type Server struct {
	engine   *gin.Engine
	builder  *preference.Builder
	notifier *notifier.Notifier
	logger   *log.Entry
}

// New собирает gin-роутер с CORS-политикой и маршрутами relay.
// Запросы без заголовка Origin (server-to-server, curl) middleware
// пропускает без проверки; с Origin — только из allow-list.
func New(builder *preference.Builder, webhookNotifier *notifier.Notifier, allowedOrigins []string, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.WithField("component", "http-server")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOriginFunc = func(origin string) bool {
		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:   engine,
		builder:  builder,
		notifier: webhookNotifier,
		logger:   logger,
	}

	engine.GET("/", s.handleLiveness)
	engine.POST("/create_preference", s.handleCreatePreference)
	engine.POST("/webhook", s.handleWebhook)

	return s
}

// Handler возвращает роутер как http.Handler для встраивания в http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}
