package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rand/homer-sub001/internal/config"
)

// loadEnvFiles loads .env.local, .env and .env.example (in that
// precedence order) from repoRoot, so llm.api_key_env and similar
// secrets can live outside the checked-in .homer/config.toml.
func loadEnvFiles(repoRoot string) {
	for _, name := range []string{".env.local", ".env", ".env.example"} {
		_ = godotenv.Load(filepath.Join(repoRoot, name))
	}
}

// loadConfig reads <repoRoot>/.homer/config.toml over config.Default,
// with CODERISK-style HOMER_* environment overrides via viper's
// AutomaticEnv.
func loadConfig(repoRoot string) (*config.Config, error) {
	loadEnvFiles(repoRoot)

	defaults := config.Default()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix("HOMER")
	v.AutomaticEnv()

	v.SetDefault("extraction", defaults.Extraction)
	v.SetDefault("analysis", defaults.Analysis)
	v.SetDefault("llm", defaults.LLM)
	v.SetDefault("renderers", defaults.Renderers)
	v.SetDefault("mcp", defaults.MCP)
	v.SetDefault("db_path", defaults.DBPath)

	configPath := filepath.Join(repoRoot, ".homer", "config.toml")
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", configPath, err)
		}
	}

	cfg := defaults
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// dbPath resolves cfg.DBPath relative to repoRoot.
func dbPath(repoRoot string, cfg *config.Config) string {
	if filepath.IsAbs(cfg.DBPath) {
		return cfg.DBPath
	}
	return filepath.Join(repoRoot, cfg.DBPath)
}
