package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sevlyar/go-daemon"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"hotfolder/internal/config"
	"hotfolder/internal/pipeline"
	"hotfolder/internal/registry"
	"hotfolder/internal/uploader"
	"hotfolder/internal/watch"
)

// Set at build time: go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "hotfolder",
		Usage:   "watch folders for new files and hand them off for upload",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("HOTFOLDER_CONFIG"),
				Value:   config.DefaultConfigFilename,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "logging level: debug, info, warn, error",
				Sources: cli.EnvVars("HOTFOLDER_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "daemonize",
				Usage:   "run as daemon",
				Sources: cli.EnvVars("HOTFOLDER_DAEMONIZE"),
			},
			&cli.BoolFlag{
				Name:    "notify",
				Usage:   "send desktop notifications",
				Sources: cli.EnvVars("HOTFOLDER_NOTIFY"),
			},
			&cli.DurationFlag{
				Name:    "settle",
				Usage:   "delay before processing new files",
				Sources: cli.EnvVars("HOTFOLDER_SETTLE"),
				Value:   0,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var cfg *config.Config
			configPath := cmd.String("config")

			// Only load config if the file exists
			haveFile := false
			if _, err := os.Stat(configPath); err == nil {
				haveFile = true
				cfg, err = config.Load(configPath)
				if err != nil {
					log.Fatalf("Failed to load config: %v", err)
				}
			} else {
				// Use defaults if no config file
				cfg = &config.Config{
					LogLevel: "info",
					Default:  &config.TaskConfig{Name: "default", Enabled: true},
				}
			}

			// Override config with flags if set
			if cmd.IsSet("log-level") {
				cfg.LogLevel = cmd.String("log-level")
			}
			if cmd.IsSet("daemonize") {
				cfg.Daemonize = cmd.Bool("daemonize")
			}
			if cmd.IsSet("notify") {
				cfg.Notifications = cmd.Bool("notify")
			}
			if cmd.IsSet("settle") {
				cfg.SettleDelay = config.Duration(cmd.Duration("settle"))
			}

			// Set log level from config
			switch cfg.LogLevel {
			case "debug":
				log.SetLevel(log.DebugLevel)
			case "info":
				log.SetLevel(log.InfoLevel)
			case "warn":
				log.SetLevel(log.WarnLevel)
			case "error":
				log.SetLevel(log.ErrorLevel)
			default:
				log.SetLevel(log.InfoLevel)
			}

			// Only daemonize if config says so
			if cfg.Daemonize {
				daemonCtx := &daemon.Context{
					PidFileName: "hotfolder.pid",
					PidFilePerm: 0644,
					LogFileName: "hotfolder.log",
					LogFilePerm: 0640,
					WorkDir:     "./",
					Umask:       027,
					Args:        []string{"[hotfolder-daemon]"},
				}

				d, err := daemonCtx.Reborn()
				if err != nil {
					log.Fatalf("Unable to run: %s", err)
				}
				if d != nil {
					return nil // Parent process exits
				}
				defer daemonCtx.Release()
				log.Info("Daemon started")
			} else {
				log.Info("Running in foreground (not daemonized)")
			}

			dispatcher := uploader.NewCommandDispatcher(cfg.Notifications)
			pl := pipeline.New(dispatcher, cfg.Notifications)
			notifier := watch.NewNotifier(time.Duration(cfg.SettleDelay))
			reg := registry.New(cfg, notifier, pl.Trigger)

			reg.Sync()

			// Persist IDs generated for watch folders that predate them
			if haveFile {
				if err := config.Save(configPath, cfg); err != nil {
					log.Warnf("Could not write config back: %v", err)
				}
			}

			// Signal handling for graceful shutdown
			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

			sig := <-signals
			log.Infof("Received signal: %s, shutting down...", sig)

			reg.Teardown()
			if cfg.Daemonize {
				if err := os.Remove("hotfolder.pid"); err != nil && !os.IsNotExist(err) {
					log.Warnf("Error removing PID file: %v", err)
				}
			}

			log.Info("Cleanup complete. Exiting.")
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
