package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Initialize loads, merges and validates configuration rooted at configDir.
//
// Steps:
//  1. Start from built-in defaults.
//  2. Load interview.yaml (if present), expand ${VAR} references, merge over
//     the defaults (user values win).
//  3. Load question_pools.yaml (if present), else fall back to the built-in
//     pool.
//  4. Validate.
func Initialize(configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("loading configuration")

	cfg := defaultConfig(configDir)

	mainPath := filepath.Join(configDir, "interview.yaml")
	if raw, err := os.ReadFile(mainPath); err == nil {
		raw = ExpandEnv(raw)
		var user Config
		if err := yaml.Unmarshal(raw, &user); err != nil {
			return nil, NewLoadError(mainPath, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
		}
		if err := mergo.Merge(cfg, &user, mergo.WithOverride); err != nil {
			return nil, NewLoadError(mainPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, NewLoadError(mainPath, err)
	} else {
		log.Warn("no interview.yaml found, using built-in defaults", "path", mainPath)
	}

	pools, err := loadQuestionPools(cfg.Store.QuestionPoolsFile)
	if err != nil {
		return nil, err
	}
	cfg.Pools = pools

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("configuration loaded",
		"port", cfg.HTTP.Port,
		"llm_model", cfg.LLM.Model,
		"fallback_model", cfg.LLM.FallbackModel,
		"general_questions", len(cfg.Pools.General),
		"tl_questions", len(cfg.Pools.TL),
	)
	return cfg, nil
}

func loadQuestionPools(path string) (QuestionPools, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultQuestionPools(), nil
		}
		return QuestionPools{}, NewLoadError(path, err)
	}
	raw = ExpandEnv(raw)
	var pools QuestionPools
	if err := yaml.Unmarshal(raw, &pools); err != nil {
		return QuestionPools{}, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	if len(pools.General) == 0 && len(pools.TL) == 0 && len(pools.WrapUp) == 0 {
		return defaultQuestionPools(), nil
	}
	return pools, nil
}

// validate performs sanity checks that cannot be expressed in YAML tags.
func validate(cfg *Config) error {
	if cfg.HTTP.Port == "" {
		return NewValidationError("http.port", ErrMissingRequiredField)
	}
	if cfg.LLM.Model == "" {
		return NewValidationError("llm.model", ErrMissingRequiredField)
	}
	if cfg.LLM.BaseURL == "" {
		return NewValidationError("llm.base_url", ErrMissingRequiredField)
	}
	if cfg.Session.MaxInTLRounds <= 0 {
		return NewValidationError("session.max_in_tl_rounds", ErrInvalidValue)
	}
	if cfg.Oracle.BackoffMin <= 0 || cfg.Oracle.BackoffMax < cfg.Oracle.BackoffMin {
		return NewValidationError("oracle.backoff", ErrInvalidValue)
	}
	return nil
}

// APIKey resolves the oracle API key from the configured environment
// variable. Empty if unset — the Oracle Adapter then sends its requests
// without an Authorization header rather than crashing at startup, since a demo
// deployment without a key should still serve the catalog and health
// endpoints.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}
