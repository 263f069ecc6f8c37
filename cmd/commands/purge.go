package commands

import (
	"context"
	"errors"
	"fmt"

	"waypoint/config"
	"waypoint/internal/application/usecase"
	"waypoint/internal/application/usecase/abstraction"
	"waypoint/internal/infrastructure/broker"
	"waypoint/internal/infrastructure/cache"
	"waypoint/internal/infrastructure/database"
	"waypoint/internal/infrastructure/minio"
	"waypoint/pkg/logger"
)

// HandlePurge deletes every waypoint of one user together with its media.
func HandlePurge(args []string) {
	if len(args) < 4 {
		ExitOnError(errors.New("at least 2 arguments expected\nuse help command for more information"))
	}

	cfg, err := config.Load(args[2])
	if err != nil {
		ExitOnError(err)
	}

	logger.InitGlobalLogger(&cfg.Logger)

	userID := args[3]
	ctx := context.Background()

	db, err := database.Connect(cfg.DBConfig)
	if err != nil {
		ExitOnError(err)
	}
	defer func() { _ = db.Stop() }()

	minIOClient, err := minio.New(cfg.MinIOClient)
	if err != nil {
		ExitOnError(err)
	}

	redisClient, err := cache.Connect(cfg.CacheConfig)
	if err != nil {
		ExitOnError(err)
	}
	defer redisClient.Close()

	brokerClient, err := broker.NewPublisherClient(cfg.BrokerConfig)
	if err != nil {
		ExitOnError(err)
	}
	defer brokerClient.Close()

	var deleter abstraction.Deleter = usecase.NewDeleter(database.NewWaypointRetriever(db), database.NewWaypointRemover(db),
		minio.NewRemover(minIOClient, &cfg.MinIORemover), cache.NewThumbnailCache(redisClient),
		broker.NewPublisher(brokerClient, cfg.PublisherConfig))

	waypoints, err := database.NewWaypointLister(db).GetByUser(ctx, userID)
	if err != nil {
		ExitOnError(err)
	}

	failed := 0
	for i := range waypoints {
		if _, err := deleter.DeleteWaypoint(ctx, waypoints[i].ID); err != nil {
			logger.Error("failed to purge waypoint", "id", waypoints[i].ID, "err", err)
			failed++
		}
	}

	logger.Info("purge finished", "user", userID, "deleted", len(waypoints)-failed, "failed", failed)

	if failed > 0 {
		ExitOnError(fmt.Errorf("%d waypoints could not be purged", failed))
	}
}
