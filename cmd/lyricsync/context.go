package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/metrics"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	quietFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	recorder *metrics.Recorder
}

func newCommandContext(configFlag, logLevelFlag *string, quietFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		quietFlag:    quietFlag,
		recorder:     metrics.New(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// ensureLogger builds the application logger once. --log-level replaces the
// configured level; --quiet suppresses everything below warnings.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logCfg := *cfg
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			if !validLevel(*c.logLevelFlag) {
				c.loggerErr = fmt.Errorf("invalid --log-level %q", *c.logLevelFlag)
				return
			}
			logCfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		logger, err := logging.NewFromConfig(&logCfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		if c.quietFlag != nil && *c.quietFlag {
			logger = logging.WithLevelOverride(logger, slog.LevelWarn)
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// close flushes metrics collected during the command.
func (c *commandContext) close() error {
	if c.config == nil {
		return nil
	}
	return c.recorder.WriteTextfile(c.config.Metrics.Textfile)
}

func validLevel(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
