package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/snap-point/follow-api/cache"
	"github.com/snap-point/follow-api/config"
	"github.com/snap-point/follow-api/logger"
	"github.com/snap-point/follow-api/middleware"
	"github.com/snap-point/follow-api/notify"
	"github.com/snap-point/follow-api/repositories"
	"github.com/snap-point/follow-api/routes"
	"github.com/snap-point/follow-api/services"
	"github.com/snap-point/follow-api/signing"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logrus.Fatalf("Error loading configuration: %v", err)
	}
	logger.Init(settings.LogLevel, settings.LogFormat)

	// Initialize database
	db, err := config.InitDB(settings.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	codec, err := signing.NewCodec([]byte(settings.ActionTokenSecret), settings.ActionTokenMaxAge)
	if err != nil {
		logrus.Fatalf("Failed to create action token codec: %v", err)
	}

	notifier, closeNotifier, err := buildNotifier(settings)
	if err != nil {
		logrus.Fatalf("Failed to create notifier: %v", err)
	}
	defer closeNotifier()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := notify.NewDispatcher(notifier, settings.NotifyWorkers, settings.NotifyQueueSize)
	// Deliveries outlive the signal context so Close can drain the queue.
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	store := repositories.NewRelationshipStore(db)
	graph := repositories.NewGraph(db, cache.New(settings.MemcacheURL))
	visibility := services.NewVisibility(graph)
	follows := services.NewFollowService(store, graph, codec, dispatcher, settings.PublicBaseURL)
	posts := services.NewPostService(repositories.NewPostRepository(db), store, visibility)

	// Create a new Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())

	// Initialize routes
	routes.SetupRoutes(r, routes.Dependencies{
		JWTSecret:  settings.JWTSecret,
		Store:      store,
		Graph:      graph,
		Follows:    follows,
		Posts:      posts,
		Visibility: visibility,
	})

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           r,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", settings.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown failed: %v", err)
	}
}

func buildNotifier(settings *config.Settings) (notify.Notifier, func(), error) {
	switch settings.Notifier {
	case "smtp":
		if settings.SMTP.Host == "" {
			return nil, nil, errors.New("SMTP_HOST must be set for the smtp notifier")
		}
		smtp := settings.SMTP
		return notify.NewMailNotifier(smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.From), func() {}, nil
	case "nats":
		n, err := notify.NewNATSNotifier(settings.NATS.URL, settings.NATS.Subject)
		if err != nil {
			return nil, nil, err
		}
		return n, func() {
			if err := n.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to drain NATS connection")
			}
		}, nil
	case "log", "":
		return notify.LogNotifier{}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown notifier %q", settings.Notifier)
}
