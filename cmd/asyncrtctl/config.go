/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package main

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults asyncrtctl's subcommands fall back to when a flag isn't given
// explicitly, loaded from an optional YAML file.
type Config struct {
	Executor struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"executor"`

	Channel struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"channel"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
}

// Validate checks Config for values runSystem can't sanely act on.
func (c *Config) Validate() error {
	if c.Executor.Capacity < 0 {
		return errors.New("asyncrtctl: executor.capacity must not be negative")
	}
	if c.Channel.Capacity < 0 {
		return errors.New("asyncrtctl: channel.capacity must not be negative")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return errors.New("asyncrtctl: metrics.port must be between 1 and 65535 when metrics are enabled")
	}
	return nil
}

// defaultConfig returns a Config with sane zero-value defaults for running without a config file.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Metrics.Port = 9090
	return cfg
}

// loadConfig reads and parses a YAML config file. An empty path is not an error: callers get
// defaultConfig back so asyncrtctl can run with no config file at all.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
