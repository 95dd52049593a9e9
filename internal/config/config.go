// Package config holds the core Config struct described in spec §6.
// Loading this struct from .homer/config.toml is the CLI's job
// (cmd/homer uses viper); this package only defines the shape and its
// defaults, mirroring the teacher's internal/config.Config but for
// the options spec.md actually names.
package config

import "time"

// Config is the fully-resolved runtime configuration for a homer run.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Analysis   AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Renderers  RenderersConfig  `yaml:"renderers" mapstructure:"renderers"`
	MCP        MCPConfig        `yaml:"mcp" mapstructure:"mcp"`
	DBPath     string           `yaml:"db_path" mapstructure:"db_path"`
}

type ExtractionConfig struct {
	Structure StructureConfig `yaml:"structure" mapstructure:"structure"`
	Languages []string        `yaml:"languages" mapstructure:"languages"`
}

type StructureConfig struct {
	IncludePatterns []string `yaml:"include_patterns" mapstructure:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns" mapstructure:"exclude_patterns"`
}

type AnalysisConfig struct {
	LLMSalienceThreshold float64 `yaml:"llm_salience_threshold" mapstructure:"llm_salience_threshold"`
	MaxLLMBatchSize      int     `yaml:"max_llm_batch_size" mapstructure:"max_llm_batch_size"`
}

type LLMConfig struct {
	Provider       string        `yaml:"provider" mapstructure:"provider"`
	Model          string        `yaml:"model" mapstructure:"model"`
	APIKeyEnv      string        `yaml:"api_key_env" mapstructure:"api_key_env"`
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	MaxConcurrent  int           `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	CostBudget     float64       `yaml:"cost_budget" mapstructure:"cost_budget"`
	TimeoutSeconds int           `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-" mapstructure:"-"`
}

type RenderersConfig struct {
	Enabled []string `yaml:"enabled" mapstructure:"enabled"`
	// BuildCommands overrides AGENTS.md's "Build & Test Commands"
	// section (spec §4.6: "Content is pulled from config (build
	// commands)"). Keys are free-form labels ("build", "test", "lint");
	// when empty the renderer falls back to inferring commands from
	// detected manifest files (go.mod, Cargo.toml, package.json, ...).
	BuildCommands map[string]string `yaml:"build_commands" mapstructure:"build_commands"`
}

type MCPConfig struct {
	Transport string `yaml:"transport" mapstructure:"transport"`
}

// Default returns the documented default configuration (spec §6: "all
// have defaults").
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Structure: StructureConfig{
				IncludePatterns: []string{"**/*"},
				ExcludePatterns: []string{
					".git/**", "node_modules/**", "vendor/**",
					"target/**", "dist/**", "build/**", ".homer/**",
				},
			},
			Languages: []string{"rust", "python", "typescript", "javascript", "go", "java"},
		},
		Analysis: AnalysisConfig{
			LLMSalienceThreshold: 0.7,
			MaxLLMBatchSize:      50,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			MaxConcurrent:  4,
			CostBudget:     0,
			TimeoutSeconds: 30,
			Timeout:        30 * time.Second,
		},
		Renderers: RenderersConfig{
			Enabled: []string{"agents_md", "module_context", "risk_map"},
		},
		MCP: MCPConfig{
			Transport: "stdio",
		},
		DBPath: ".homer/homer.db",
	}
}
