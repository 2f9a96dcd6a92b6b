package am

import "github.com/teranos/graphstyle/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port != nil && *c.Server.Port == 0 {
		return errors.Newf("server.port cannot be 0 (omit for default port %d)", DefaultServerPort)
	}
	if c.Server.Port != nil && (*c.Server.Port < 0 || *c.Server.Port > 65535) {
		return errors.Newf("server.port must be in 1..65535, got %d", *c.Server.Port)
	}

	// Rate limit: 0 = unlimited, negative = invalid
	if c.Server.MutationsPerSecond < 0 {
		return errors.Newf("server.mutations_per_second must be >= 0, got %f", c.Server.MutationsPerSecond)
	}

	// Debounce: 0 = default
	if c.Styles.DebounceMS < 0 {
		return errors.Newf("styles.debounce_ms must be >= 0, got %d", c.Styles.DebounceMS)
	}
	if c.Styles.RenderConcurrency < 0 {
		return errors.Newf("styles.render_concurrency must be >= 0, got %d", c.Styles.RenderConcurrency)
	}

	switch c.Styles.PublishPolicy {
	case "", PublishLatest, PublishLastSettled:
	default:
		return errors.WithHintf(
			errors.Newf("styles.publish_policy %q is not supported", c.Styles.PublishPolicy),
			"use %q or %q", PublishLatest, PublishLastSettled)
	}

	if c.Icons.CacheSize < 0 {
		return errors.Newf("icons.cache_size must be >= 0, got %d", c.Icons.CacheSize)
	}

	return nil
}
