package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/starrycyq/travle/internal/bootstrap"
	"github.com/starrycyq/travle/internal/config"
	"github.com/starrycyq/travle/internal/infrastructure/logger"
	"github.com/urfave/cli/v3"
)

// Stdout is where command results are written. Tests swap it.
var Stdout io.Writer = os.Stdout

// loadConfig reads the file named by --config. A missing default file falls
// back to built-in defaults and TRAVLE_* variables.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	if _, err := os.Stat(path); os.IsNotExist(err) && !cmd.IsSet("config") {
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries command output.
	cfg.Logger.OutputPaths = []string{"stderr"}
	return cfg, nil
}

func newContainer(_ context.Context, cmd *cli.Command) (*bootstrap.Container, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return bootstrap.New(cfg, log)
}

func closeContainer(c *bootstrap.Container) {
	if err := c.Close(); err != nil {
		c.Logger.Warnw("cli_close_failed", "error", err)
	}
	_ = c.Logger.Sync()
}

func printJSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
