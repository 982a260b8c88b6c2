package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/hallorn/broadside/pkg/api"
	"github.com/hallorn/broadside/pkg/clients"
	"github.com/hallorn/broadside/pkg/game"
	"github.com/hallorn/broadside/pkg/log"
	"github.com/hallorn/broadside/pkg/network"
	"github.com/hallorn/broadside/pkg/queue"
	"github.com/hallorn/broadside/pkg/repositories"
	"github.com/hallorn/broadside/pkg/state"
	"github.com/hallorn/broadside/pkg/workers"
)

func main() {
	wsPort := flag.Int("ws-port", 8888, "WebSocket port to listen on")
	apiPort := flag.Int("api-port", 8889, "API port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	repositoryType := flag.String("repository", "sqlite", "Repository backend (postgres or sqlite)")
	sqlitePath := flag.String("sqlite-path", "broadside.db", "Path to the SQLite database file")
	sqliteMigrations := flag.String("sqlite-migrations", "migrations/sqlite", "Path to the SQLite migrations directory")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded: %v", err)
	}

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	ctx := context.Background()

	var repository repositories.Repository
	switch *repositoryType {
	case "postgres":
		connStr := os.Getenv("DATABASE_URL")
		if connStr == "" {
			panic("DATABASE_URL environment variable must be set")
		}
		repository, err = repositories.NewPostgresRepository(ctx, connStr)
		if err != nil {
			panic(fmt.Sprintf("Failed to create postgres repository: %v", err))
		}
	case "sqlite":
		repository, err = repositories.NewSQLiteRepository(ctx, *sqlitePath, *sqliteMigrations)
		if err != nil {
			panic(fmt.Sprintf("Failed to create sqlite repository: %v", err))
		}
	default:
		panic(fmt.Sprintf("Unknown repository type: %s", *repositoryType))
	}
	defer repository.Close(ctx)

	clientManager := clients.NewClientManager()
	clientMessageQueue := queue.NewInMemoryQueue(10000)
	connectionEventQueue := queue.NewInMemoryQueue(1000)

	wsServer := network.NewWSServer(network.NewWSServerOptions{
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		Port:          *wsPort,
	})
	go wsServer.Start(ctx)

	clientEventWorker := workers.NewClientEventWorker(workers.NewClientEventWorkerOptions{
		ClientManager:        clientManager,
		ConnectionEventQueue: connectionEventQueue,
	})
	go clientEventWorker.Start()

	stateManager := state.NewInMemoryStateManager()
	saveSnapshotChannelSize := 100
	saveSnapshotChan := make(chan workers.SaveSnapshotRequest, saveSnapshotChannelSize)

	saveLoopInterval := 10 * time.Second
	saveSnapshotWorker := workers.NewSaveSnapshotWorker(workers.NewSaveSnapshotWorkerOptions{
		Repository:       repository,
		SaveSnapshotChan: saveSnapshotChan,
		StateManager:     stateManager,
		Interval:         saveLoopInterval,
	})
	go saveSnapshotWorker.Start(ctx)

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:       *apiPort,
		Repository: repository,
	})
	go apiServer.Start()

	matchLoopInterval := 50 * time.Millisecond
	matchManager := game.NewMatchManager(game.NewMatchManagerOptions{
		ClientManager:        clientManager,
		ClientMessageQueue:   clientMessageQueue,
		ConnectionEventQueue: connectionEventQueue,
		Repository:           repository,
		StateManager:         stateManager,
		SaveSnapshotChan:     saveSnapshotChan,
		MatchLoopInterval:    matchLoopInterval,
	})

	log.Info("Starting match manager")
	if err := matchManager.Start(ctx); err != nil {
		log.Error("Match manager error: %v", err)
	}
}
