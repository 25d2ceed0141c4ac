package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/config"
	"github.com/Mehdichaaki/dashbord/internal/dashboard"
	"github.com/Mehdichaaki/dashbord/internal/logger"
	"github.com/Mehdichaaki/dashbord/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	slogLogger := logger.NewWithServiceContext(dashboard.ServiceName, dashboard.Version)
	slogLogger.Info("initializing dashboard", "commit", dashboard.GitCommit, "built", dashboard.BuildTime)

	cfg, err := config.LoadDashboard()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	handler, err := dashboard.NewHandler(dashboard.NewClient(cfg.Dashboard.APIURL), slogLogger, dashboard.Options{
		TokenTTL:     cfg.Auth.TokenTTL,
		CookieSecure: cfg.Auth.CookieSecure,
	})
	if err != nil {
		log.Fatal("Failed to initialize dashboard:", err)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(middleware.Recoverer(slogLogger))
	router.Use(middleware.SecurityHeaders)
	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Dashboard.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slogLogger.Info("dashboard starting", "port", cfg.Dashboard.Port, "api_url", cfg.Dashboard.APIURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start dashboard:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slogLogger.Info("shutting down dashboard")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Dashboard forced to shutdown:", err)
	}
}
