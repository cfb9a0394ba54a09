package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment override, e.g. TOASTD_STACK_MAX_VISIBLE.
const EnvPrefix = "TOASTD_"

// ApplyEnv overlays TOASTD_* environment variables onto cfg.
// A .env file in the config directory is loaded first if present;
// variables already set in the process environment win.
func ApplyEnv(cfg *DaemonConfig) error {
	if path, err := EnvFilePath(); err == nil {
		if err := loadEnvFile(path); err != nil {
			return err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}

// loadEnvFile loads path into the process environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
