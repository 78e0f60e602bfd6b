// Package config provides configuration loading and validation for
// resilience profiles.
//
// It uses Viper to load per-dependency retry, circuit breaker, bulkhead and
// rate limit settings from YAML files, with RESILKIT_-prefixed environment
// variables overriding file values
// (e.g. RESILKIT_DEFAULTS_RETRY_MAX_ATTEMPTS). A .env file, when present, is
// loaded into the environment first.
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile("resilience.yml"))
//	profile := cfg.ProfileFor("payments")
//	retryCfg := profile.RetryConfig()
//
// Invalid settings fail at Load, never at call time.
package config
