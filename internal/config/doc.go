// Package config handles configuration loading and merging for deflake.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--bug, --expects, --platform, --flag-specific, --no-color, ...)
//  2. Environment variables (DEFLAKE_BUG, DEFLAKE_EXPECTS, DEFLAKE_HISTORY, DEFLAKE_DEBUG, DEFLAKE_NO_COLOR, NO_COLOR)
//  3. YAML config file (.deflake.yaml in the working directory or
//     ~/.config/deflake/config.yaml)
//  4. Hardcoded defaults
//
// The result is a Run value. It is resolved once before a reconciliation
// pass starts and is not modified afterwards.
//
// # Expected-outcome filter
//
// The --expects value selects which categories new expectation records may
// list:
//
//   - unset: Pass, Failure, Crash, Timeout
//   - "": no categories
//   - "-Pass": the default minus Pass
//   - "Failure,Crash": exactly those categories
package config
