package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure: a bad value, a missing
	// DSN or shared secret, or an unusable dimension list.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig wraps failures reading the YAML file, the dotenv file
	// or the environment.
	ErrLoadConfig = errors.New("load config failed")
)
