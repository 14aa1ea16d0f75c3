// Package config loads and validates the interview orchestrator's
// configuration: server settings, file-store paths, oracle connection
// details, and the phase question pools.
package config

import "time"

// Config is the umbrella configuration object returned by Initialize and
// threaded through the rest of the application.
type Config struct {
	configDir string

	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	LLM     LLMConfig     `yaml:"llm"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Session SessionConfig `yaml:"session"`

	// Pools is loaded from a separate file (QuestionPoolsFile) rather than
	// inline, so the question set can be edited without touching server
	// settings.
	Pools QuestionPools `yaml:"-"`
}

// HTTPConfig controls the API server.
type HTTPConfig struct {
	Port string `yaml:"port"`
}

// StoreConfig locates the on-disk files backing the Catalog Index, Knowledge
// Store and Session Store.
type StoreConfig struct {
	CatalogFile       string `yaml:"catalog_file"`
	SessionsFile      string `yaml:"sessions_file"`
	JSONLDFile        string `yaml:"jsonld_file"`
	TurtleFile        string `yaml:"turtle_file"`
	EvaluationsFile   string `yaml:"evaluations_file"`
	TracesDir         string `yaml:"traces_dir"`
	QuestionPoolsFile string `yaml:"question_pools_file"`
}

// LLMConfig names the primary and fallback models and the credential used to
// reach the oracle HTTP endpoint.
type LLMConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Model         string        `yaml:"model"`
	FallbackModel string        `yaml:"fallback_model,omitempty"`
	APIKeyEnv     string        `yaml:"api_key_env"`
	Timeout       time.Duration `yaml:"timeout"`
}

// OracleConfig holds the backoff bounds handed to the Oracle Adapter. The
// adapter makes at most one retry, only against a (different) fallback
// model, never on quota errors; that single attempt is issued at once, so
// these bounds do not delay it.
type OracleConfig struct {
	BackoffMin time.Duration `yaml:"backoff_min"`
	BackoffMax time.Duration `yaml:"backoff_max"`
}

// SessionConfig holds interview state-machine tunables.
type SessionConfig struct {
	MaxInTLRounds int `yaml:"max_in_tl_rounds"`
}

// ConfigDir returns the directory the configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}
