package config

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("config: invalid config")
	ErrLoadConfig    = errors.New("config: load config failed")
)
