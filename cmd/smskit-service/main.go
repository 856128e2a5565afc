package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	_ "smskit/cmd/smskit-service/docs"

	"smskit/internal/classifier"
	"smskit/internal/config"
	"smskit/internal/constants"
	"smskit/internal/logger"
	"smskit/pkg/bootstrap"
	"smskit/pkg/logging"
	"smskit/pkg/migrations"
)

var (
	configFile string
)

// @title           smskit Service API
// @version         1.0
// @description     Read-only SMS inbox bridge: permission flow, inbox listings and transaction classification

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "smskit-service",
		Short: "SMS inbox bridge",
		Long:  "smskit-service exposes SMS permission handling, inbox listings and transaction classification over HTTP",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(classifyCmd())

	return rootCmd
}

// loadConfig resolves the config path from --config or CONFIG_FILE and builds
// the logger.
func loadConfig() (*config.Config, logger.Logger, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}

	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			log.InfowCtx(ctx, "Starting smskit service")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				if shutdownErr := app.Shutdown(context.Background()); shutdownErr != nil {
					log.ErrorwCtx(ctx, "Cleanup after failed start", "error", shutdownErr)
				}
				return err
			}

			if err := app.Run(ctx); err != nil {
				log.ErrorwCtx(ctx, "Application error", "error", err)
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the inbox schema to the configured message store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ConnectTimeout)
			defer cancel()

			dc := bootstrap.NewDatabaseConnector(cfg, log)

			switch cfg.Source.Type {
			case constants.SourceTypePostgres:
				db, err := dc.InitPostgreSQL(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := migrations.MigratePostgres(db); err != nil {
					return err
				}
				version, dirty, err := migrations.PostgresVersion(db)
				if err != nil {
					return err
				}
				log.InfowCtx(ctx, "PostgreSQL schema up to date", "version", version, "dirty", dirty)

			case constants.SourceTypeMongoDB:
				client, err := dc.InitMongoDB(ctx)
				if err != nil {
					return err
				}
				defer client.Disconnect(context.Background())

				dbName := cfg.Database.MongoDB.Database
				if dbName == "" {
					dbName = constants.DefaultMongoDBName
				}
				if err := migrations.EnsureInboxCollection(ctx, client.Database(dbName), cfg.Source.Collection); err != nil {
					return err
				}
				log.InfowCtx(ctx, "MongoDB inbox collection ready", "collection", cfg.Source.Collection)

			default:
				log.InfowCtx(ctx, "Nothing to migrate", "source", cfg.Source.Type)
			}
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [body...]",
		Short: "Classify message bodies as transaction or not",
		Long:  "Classifies the body given as arguments, or each line of stdin when no arguments are given, and prints one JSON verdict per body",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := json.NewEncoder(cmd.OutOrStdout())

			if len(args) > 0 {
				return out.Encode(classifier.Explain(strings.Join(args, " ")))
			}
			return classifyLines(cmd.InOrStdin(), out)
		},
	}
}

func classifyLines(in io.Reader, out *json.Encoder) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := out.Encode(classifier.Explain(scanner.Text())); err != nil {
			return err
		}
	}
	return scanner.Err()
}
