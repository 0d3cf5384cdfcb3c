package main

import (
	"strings"
	"sync"

	"log/slog"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/projects"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the project store for one command invocation and closes it
// when the command returns.
func (c *commandContext) withStore(fn func(*config.Config, *projects.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := projects.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// commandLogger builds a quiet console logger for one-shot commands. The
// daemon builds its own logger with a file sink instead.
func (c *commandContext) commandLogger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.New(logging.Options{
		Level:  "warn",
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
