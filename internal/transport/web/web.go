package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/avstrong/afrotour/internal/auth"
	"github.com/avstrong/afrotour/internal/booking"
	"github.com/avstrong/afrotour/internal/catalog"
	"github.com/avstrong/afrotour/internal/logger"
)

type Server struct {
	srv      *http.Server
	router   *http.ServeMux
	l        *logger.Logger
	conf     Conf
	bManager *booking.Manager
	catalog  *catalog.Catalog
	auth     *auth.Gateway
	tokens   *auth.TokenIssuer
	limiters *limiterSet
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	AllowedOrigins    []string
	AuthRateRPS       float64
	AuthRateBurst     int
}

type Deps struct {
	Bookings *booking.Manager
	Catalog  *catalog.Catalog
	Auth     *auth.Gateway
	Tokens   *auth.TokenIssuer
}

func New(ctx context.Context, conf Conf, deps Deps) (*Server, error) {
	mux := http.NewServeMux()

	server := &Server{
		router:   mux,
		l:        conf.L,
		conf:     conf,
		bManager: deps.Bookings,
		catalog:  deps.Catalog,
		auth:     deps.Auth,
		tokens:   deps.Tokens,
		limiters: newLimiterSet(ctx, conf.AuthRateRPS, conf.AuthRateBurst),
	}

	server.addRoutes(mux)

	//nolint:exhaustruct
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: conf.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{"Location"},
	})

	//nolint:exhaustruct
	server.srv = &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           corsHandler.Handler(mux),
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

// Handler is the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
