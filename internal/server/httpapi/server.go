// Package httpapi exposes the storefront services as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Services groups the business services the handlers call.
type Services struct {
	Users     UserService
	Catalog   CatalogService
	Carts     CartService
	Addresses AddressService
	Orders    OrderService
}

type Server struct {
	address     string
	logger      logging.Logger
	services    Services
	corsOrigins []string
	engine      *gin.Engine
}

// NewServer builds the router. An empty corsOrigins allows any origin.
func NewServer(address string, l logging.Logger, svc Services, corsOrigins []string) *Server {
	s := &Server{
		address:     address,
		logger:      l.With("module", "http_server"),
		services:    svc,
		corsOrigins: corsOrigins,
	}
	s.engine = s.newRouter()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
