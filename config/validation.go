package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a setting is out of range.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrIncompleteCredentials indicates only one of the consumer key and
	// secret is set.
	ErrIncompleteCredentials = errors.New("config: consumer key and secret must be set together")
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if (c.Discogs.ConsumerKey == "") != (c.Discogs.ConsumerSecret == "") {
		return ErrIncompleteCredentials
	}
	if c.Discogs.BaseURL == "" {
		return fmt.Errorf("%w: discogs.base_url is empty", ErrInvalidConfig)
	}
	if c.Discogs.Timeout <= 0 {
		return fmt.Errorf("%w: discogs.timeout must be positive", ErrInvalidConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	}
	if c.Dispatch.Workers < 1 {
		return fmt.Errorf("%w: dispatch.workers must be at least 1, got %d", ErrInvalidConfig, c.Dispatch.Workers)
	}
	obs := c.Observe.Observer("")
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
