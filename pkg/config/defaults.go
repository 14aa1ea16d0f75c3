package config

import "time"

// defaultConfig returns the built-in configuration applied before the user's
// YAML file is merged on top (mergo.WithOverride — non-zero user fields win).
func defaultConfig(configDir string) *Config {
	return &Config{
		configDir: configDir,
		HTTP: HTTPConfig{
			Port: "8080",
		},
		Store: StoreConfig{
			CatalogFile:       "data/catalog.json",
			SessionsFile:      "data/sessions.json",
			JSONLDFile:        "data/knowledge.jsonld.json",
			TurtleFile:        "data/knowledge.ttl",
			EvaluationsFile:   "data/evaluations.jsonl",
			TracesDir:         "data/traces",
			QuestionPoolsFile: "config/question_pools.yaml",
		},
		LLM: LLMConfig{
			BaseURL:   "http://localhost:11500/v1/classify",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "ORACLE_API_KEY",
			Timeout:   20 * time.Second,
		},
		Oracle: OracleConfig{
			BackoffMin: 250 * time.Millisecond,
			BackoffMax: 750 * time.Millisecond,
		},
		Session: SessionConfig{
			MaxInTLRounds: 6,
		},
	}
}

// defaultQuestionPools is used when the question-pools file is absent; it
// keeps the dialogue controller able to make progress even on a fresh
// checkout with no config/ directory populated yet.
func defaultQuestionPools() QuestionPools {
	return QuestionPools{
		General: []string{
			"In welchem Semester bist du aktuell und wie weit bist du ungefähr durch dein Studium?",
			"Gibt es ein Modul, das dir in letzter Zeit besonders im Kopf geblieben ist?",
			"Worüber möchtest du heute sprechen — ein bestimmtes Modul oder allgemein dein Studium?",
		},
		TL: []string{
			"Wie wurde die Teilleistung geprüft — schriftlich oder mündlich?",
			"Wie viele Wochen hast du dich auf die Prüfung vorbereitet?",
			"Wie viele Stunden pro Woche hast du investiert?",
			"Wie schwer würdest du das Modul auf einer Skala von 1 bis 5 einschätzen?",
			"Welche Lernstrategien haben dir geholfen?",
			"Welche Materialien hast du benutzt?",
			"Worin lagen die typischen Fallstricke?",
			"Was würdest du jemandem raten, der das Modul zum ersten Mal belegt?",
		},
		WrapUp: []string{
			"Gibt es noch eine weitere Teilleistung, über die wir sprechen sollten?",
		},
	}
}
