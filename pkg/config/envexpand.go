package config

import "os"

// ExpandEnv expands environment variables in YAML content using the standard
// library's shell-style syntax. Supports both ${VAR} and $VAR.
//
// Examples:
//   - ${ORACLE_API_KEY} → value of ORACLE_API_KEY
//   - $PORT              → value of PORT
//
// Missing variables expand to the empty string. The defaults merge does not
// override with empty values, so such a field keeps its built-in default.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
