// Package config loads the command-line tool settings from an INI file.
//
// Example file:
//
//	[network]
//	id = tc
//
//	[store]
//	path = ./shardtx.db
//
//	[log]
//	level = info
//
// Every key is optional. A missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-ini/ini"
	"github.com/sirupsen/logrus"

	"github.com/suffix-labs/shardtx/pkg/logging"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// Defaults.
const (
	DefaultNetworkID = types.MainnetID
	DefaultStorePath = "shardtx.db"
)

// Config holds the tool settings.
type Config struct {
	NetworkID types.NetworkID // [network] id
	StorePath string          // [store] path
	LogLevel  logrus.Level    // [log] level
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		NetworkID: DefaultNetworkID,
		StorePath: DefaultStorePath,
		LogLevel:  logging.DefaultLevel,
	}
}

// Load reads path. An empty path or a missing file returns Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.apply(file); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads settings from INI text.
func Parse(data []byte) (*Config, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg := Default()
	if err := cfg.apply(file); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(file *ini.File) error {
	if id := file.Section("network").Key("id").String(); id != "" {
		networkID := types.NetworkID(id)
		if err := networkID.Validate(); err != nil {
			return err
		}
		c.NetworkID = networkID
	}

	if path := file.Section("store").Key("path").String(); path != "" {
		c.StorePath = path
	}

	level, err := logging.ParseLevel(file.Section("log").Key("level").String())
	if err != nil {
		return err
	}
	c.LogLevel = level
	return nil
}
