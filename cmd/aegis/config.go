package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	if err := loadEnvFile(cCtx); err != nil {
		return nil, err
	}

	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	switch c.StoreBackend {
	case types.StoreBackendPostgres:
		if c.DatabaseURL == "" {
			return nil, fmt.Errorf("set DATABASE_URL or STORE_BACKEND=none")
		}
	case types.StoreBackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("set SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
	case types.StoreBackendNone:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	for name, limit := range map[string]int{
		"MANUAL_RATE_LIMIT": c.ManualRateLimit,
		"MAP_RATE_LIMIT":    c.MapRateLimit,
		"VOICE_RATE_LIMIT":  c.VoiceRateLimit,
		"TRACK_RATE_LIMIT":  c.TrackRateLimit,
	} {
		if limit <= 0 {
			return nil, fmt.Errorf("%s must be positive", name)
		}
	}

	return c, nil
}

// loadEnvFile reads the dotenv file into the process environment. A missing
// file is only an error when it was named explicitly.
func loadEnvFile(cCtx *cli.Context) error {
	file := cCtx.String("env-file")
	if file == "" {
		return nil
	}

	err := godotenv.Load(file)
	if err == nil {
		return nil
	}

	if errors.Is(err, fs.ErrNotExist) && !cCtx.IsSet("env-file") {
		return nil
	}

	return fmt.Errorf("load env file %s: %w", file, err)
}

func newLogger(config *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
