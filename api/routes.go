package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/expense-server/internal/auth"
	"github.com/carson-networks/expense-server/internal/handlers/v1/expenses"
	"github.com/carson-networks/expense-server/internal/handlers/v1/status"
	"github.com/carson-networks/expense-server/internal/handlers/v1/users"
	"github.com/carson-networks/expense-server/internal/logging"
	"github.com/carson-networks/expense-server/internal/service"
	"github.com/carson-networks/expense-server/internal/storage"
)

const shutdownTimeout = 30 * time.Second

type Rest struct {
	Logger         *logrus.Logger
	Port           string
	Service        *service.Service
	Storage        storage.Storage
	Tokens         *auth.Tokens
	RequireAuth    bool
	AllowedOrigins []string
}

// Router builds the HTTP handler serving every route.
func (r *Rest) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", logging.RequestIDHeader},
		ExposedHeaders:   []string{"Location", "X-Total-Count", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	statusHandler := status.NewHandler(r.Storage)
	router.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	config := huma.DefaultConfig("Expense Server", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		auth.SecurityScheme: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humachi.New(router, config)
	api.UseMiddleware(
		logging.Middleware(r.Logger),
		auth.Middleware(api, r.Tokens, r.RequireAuth),
	)

	expenseService := r.Service.Expense
	expenses.NewCreateExpenseHandler(expenseService).Register(api)
	expenses.NewListExpensesHandler(expenseService).Register(api)
	expenses.NewGetExpenseHandler(expenseService).Register(api)
	expenses.NewUpdateExpenseHandler(expenseService).Register(api)
	expenses.NewDeleteExpenseHandler(expenseService).Register(api)

	users.NewRegisterHandler(r.Service.User).Register(api)
	users.NewLoginHandler(r.Service.User).Register(api)

	return router
}

// Server builds the HTTP server for the configured port.
func (r *Rest) Server() *http.Server {
	return &http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Router(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}
}

// Serve runs the listener and the shutdown watcher side by side. When ctx
// is cancelled, or the listener fails, in-flight requests are drained for
// up to shutdownTimeout.
func (r *Rest) Serve(ctx context.Context) error {
	server := r.Server()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		r.Logger.Info("HttpServer.Serve.shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.Logger.WithError(err).Error("HttpServer.Serve.shutdown error")
			return err
		}
		return nil
	})

	return g.Wait()
}
