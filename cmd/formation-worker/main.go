package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/formationhq/formation/pkg/cmd"
	"github.com/formationhq/formation/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "formation-worker",
		EnableShellCompletion: true,
		Usage:                 "Start workers to run formation workflows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "name-registry-url",
				Usage:   "Redis URL for the state name registry (static list if empty)",
				Value:   "",
				Sources: cli.EnvVars("NAME_REGISTRY_URL"),
			},
			&cli.StringFlag{
				Name:    "support-channel",
				Usage:   "Internal recipient copied on completion notifications",
				Value:   "support@formationhq.test",
				Sources: cli.EnvVars("SUPPORT_CHANNEL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("formation-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Formation Worker")

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			nameRegistry := cmd.NewNameRegistry(command.String("name-registry-url"))

			worker := NewWorkerManager(
				workerID,
				persistence,
				eventBus,
				nameRegistry,
				command.String("support-channel"),
				logger,
			)

			err := worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start event-driven worker", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
