// cmd/uno/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/uno/internal/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "uno",
		Usage: "colour and number matching card game server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "overrides LOG_LEVEL"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP game server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "overrides PORT"},
				},
				Action: runServe,
			},
			{
				Name:   "historian",
				Usage:  "drain the action queue into PostgreSQL",
				Action: runHistorian,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		logrus.Fatalf("uno: %v", err)
	}
}

// loadConfig reads the environment and applies command line overrides.
func loadConfig(cmd *cli.Command) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	// the engine packages log through the package-level logger
	if err := cfg.ConfigureLogger(logrus.StandardLogger()); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
