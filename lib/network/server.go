package network

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/ulule/limiter"
)

// DefaultRateLimit allows 100 requests per second per client.
var DefaultRateLimit = limiter.Rate{
	Period: time.Second,
	Limit:  100,
}

type ServerConfig struct {
	Bind string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	RateLimit limiter.Rate
}

func NewServerConfig(bind string) ServerConfig {
	return ServerConfig{
		Bind:         bind,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // streaming endpoints stay open
		IdleTimeout:  60 * time.Second,
		RateLimit:    DefaultRateLimit,
	}
}

// Server is the HTTP surface of a node: the status API, the metrics
// endpoint and the event stream all hang off its router.
type Server struct {
	config ServerConfig
	router *mux.Router
	server *http.Server
}

func NewServer(config ServerConfig) *Server {
	router := mux.NewRouter()
	router.Use(RecoverMiddleware(false))
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(config.RateLimit))

	return &Server{
		config: config,
		router: router,
		server: &http.Server{
			Addr:         config.Bind,
			Handler:      handlers.CompressHandler(router),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) AddHandler(pattern string, handler http.Handler) *mux.Route {
	return s.router.Handle(pattern, handler)
}

func (s *Server) Start() error {
	log.Info("starting http server", "bind", s.config.Bind)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	log.Info("stopping http server", "bind", s.config.Bind)

	return s.server.Shutdown(ctx)
}
