package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"waypoint"
	"waypoint/config"
	"waypoint/internal/application/usecase"
	"waypoint/internal/infrastructure/broker"
	"waypoint/internal/infrastructure/cache"
	"waypoint/internal/infrastructure/database"
	"waypoint/internal/infrastructure/geocoder"
	"waypoint/internal/infrastructure/location"
	"waypoint/internal/infrastructure/mediacache"
	"waypoint/internal/infrastructure/minio"
	"waypoint/internal/presentation"
	"waypoint/internal/presentation/handler"
	"waypoint/internal/presentation/health"
	"waypoint/internal/presentation/middleware"
	"waypoint/pkg/logger"
)

func HandleRun(args []string) {
	if len(args) < 3 {
		ExitOnError(errors.New("at least 1 arguments expected\nuse help command for more information"))
	}

	cfg, err := config.Load(args[2])
	if err != nil {
		ExitOnError(err)
	}

	logger.InitGlobalLogger(&cfg.Logger)

	logger.Info("running waypoint", "version", waypoint.StringVersion())

	healthServer, err := health.Listen(fmt.Sprintf(":%d", cfg.Default.HealthGRPCPort))
	if err != nil {
		ExitOnError(err)
	}
	go healthServer.Serve()

	// Every instance needs every change notification, so each one reads
	// through its own consumer group.
	instance := instanceName()
	cfg.BrokerConfig.GroupName = fmt.Sprintf("%s-%s", cfg.BrokerConfig.GroupName, instance)

	brokerClient, err := broker.NewClient(cfg.BrokerConfig)
	if err != nil {
		ExitOnError(err)
	}

	brokerPublisher := broker.NewPublisher(brokerClient, cfg.PublisherConfig)
	brokerReceiver := broker.NewReceiver(brokerClient)

	redisClient, err := cache.Connect(cfg.CacheConfig)
	if err != nil {
		ExitOnError(err)
	}

	db, err := database.Connect(cfg.DBConfig)
	if err != nil {
		ExitOnError(err)
	}

	dbLister := database.NewWaypointLister(db)
	dbRetriever := database.NewWaypointRetriever(db)
	dbWriter := database.NewWaypointWriter(db)
	userStore := database.NewUserStore(db)

	minIOClient, err := minio.New(cfg.MinIOClient)
	if err != nil {
		ExitOnError(err)
	}

	if err := minIOClient.EnsureBucket(context.Background(), cfg.MinIOUploader.Bucket); err != nil {
		ExitOnError(err)
	}

	minIOUploader := minio.NewUploader(minIOClient, &cfg.MinIOUploader)
	minIORemover := minio.NewRemover(minIOClient, &cfg.MinIORemover)
	minIOResolver := minio.NewResolver(minIOClient, &cfg.MinIOResolver)

	media, err := mediacache.New(cfg.MediaCache)
	if err != nil {
		ExitOnError(err)
	}

	thumbnails := cache.NewThumbnailCache(redisClient)
	locationStore := location.NewStore(redisClient, cfg.Location)

	sequencer := usecase.NewSequencer(locationStore, geocoder.NewNominatim(cfg.Geocoder), media,
		minIOUploader, minIORemover, dbWriter, brokerPublisher)
	capturer := usecase.NewCapturer(media, sequencer, dbLister,
		time.Duration(cfg.Capture.SessionTTL)*time.Second)
	lister := usecase.NewLister(dbLister, cfg.Default.PublicBaseURL)
	getter := usecase.NewGetter(dbRetriever, minIOResolver, cfg.Default.PublicBaseURL)
	thumbnailer := usecase.NewThumbnailer(getter, minIOResolver, thumbnails,
		time.Duration(cfg.CacheConfig.ThumbnailTTL)*time.Second)
	feed := usecase.NewFeed(brokerReceiver, lister, instance)
	authenticator := usecase.NewAuthenticator(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTL)*time.Second,
		userStore, userStore, cache.NewTokenDenylist(redisClient))

	authHandler := handler.NewAuthHandler(authenticator)
	locationHandler := handler.NewLocationHandler(locationStore)
	captureHandler := handler.NewCaptureHandler(capturer)
	waypointHandler := handler.NewWaypointHandler(lister, getter, thumbnailer)
	streamHandler := handler.NewStreamHandler(capturer, feed, lister)

	e := echo.New()
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderContentLength},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost,
			http.MethodDelete, http.MethodHead, http.MethodOptions},
		ExposeHeaders: []string{presentation.ReasonTag},
		MaxAge:        86400,
	}))
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Secure())
	e.Use(echoMiddleware.BodyLimit("50M"))
	e.Use(echoMiddleware.RateLimiter(echoMiddleware.NewRateLimiterMemoryStore(20)))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	e.POST("/auth/signup", authHandler.HandleSignUp)
	e.POST("/auth/signin", authHandler.HandleSignIn)

	auth := middleware.Auth(authenticator)

	e.POST("/auth/signout", authHandler.HandleSignOut, auth)
	e.GET("/auth/me", authHandler.HandleMe, auth)
	e.POST("/location", locationHandler.HandleReport, auth)

	captures := e.Group("/captures", auth)
	captures.POST("", captureHandler.HandleStart)
	captures.GET("/:id", captureHandler.HandleGet)
	captures.GET("/:id/events", streamHandler.HandleCaptureEvents)
	captures.PUT("/:id/photos/back", captureHandler.HandleBackPhoto)
	captures.PUT("/:id/photos/front", captureHandler.HandleFrontPhoto)
	captures.POST("/:id/photos/cancel", captureHandler.HandleCancelPhoto)
	captures.POST("/:id/restart", captureHandler.HandleRestart)
	captures.POST("/:id/recording", captureHandler.HandleStartRecording)
	captures.PUT("/:id/title", captureHandler.HandleTitle)
	captures.POST("/:id/tags", captureHandler.HandleAddTag)
	captures.DELETE("/:id/tags/:tag", captureHandler.HandleRemoveTag)
	captures.PUT("/:id/audio", captureHandler.HandleAudio)
	captures.POST("/:id/retry", captureHandler.HandleRetry)
	captures.DELETE("/:id", captureHandler.HandleCancel)

	waypoints := e.Group("/waypoints", auth)
	waypoints.GET("", waypointHandler.HandleList)
	waypoints.GET("/tags", waypointHandler.HandleTags)
	waypoints.GET("/map", waypointHandler.HandleMap)
	waypoints.GET("/live", streamHandler.HandleLive)
	waypoints.GET("/:id", waypointHandler.HandleGet)
	waypoints.GET("/:id/media/:kind", waypointHandler.HandleMedia)
	waypoints.GET("/:id/thumbnail/:kind", waypointHandler.HandleThumbnail)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := feed.Run(ctx); err != nil {
			logger.Error("waypoint feed stopped", "err", err)
		}
	}()

	go sweep(ctx, capturer, time.Duration(cfg.Capture.SweepInterval)*time.Second)

	go func() {
		if err := e.Start(cfg.Default.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ExitOnError(fmt.Errorf("shutting down server: %w", err))
		}
	}()

	healthServer.SetServing(true)

	<-ctx.Done()
	healthServer.SetServing(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("http shutdown failed", "err", err)
	}

	capturer.Close()
	healthServer.Stop()

	if err := brokerClient.DropGroup(ctx); err != nil {
		logger.Warn("failed to drop consumer group", "group", cfg.BrokerConfig.GroupName, "err", err)
	}
	_ = brokerClient.Close()
	_ = redisClient.Close()

	if err := db.Stop(); err != nil {
		logger.Error("database disconnect failed", "err", err)
	}
}

func sweep(ctx context.Context, capturer *usecase.Capturer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			capturer.Sweep(now)
		}
	}
}

func instanceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}

	return uuid.NewString()
}
