// Package config loads the wslbuild TOML configuration file.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Subsystem SubsystemConfig `toml:"subsystem"`
	Mounts    MountsConfig    `toml:"mounts"`
	Env       EnvConfig       `toml:"env"`
	Defaults  DefaultsConfig  `toml:"defaults"`
}

type SubsystemConfig struct {
	// Distro selects the WSL distribution (wsl.exe -d). Empty uses the
	// host's default distribution.
	Distro string `toml:"distro"`
}

type MountsConfig struct {
	// Root is where Windows drives appear inside the subsystem, matching
	// [automount] root in /etc/wsl.conf.
	Root string `toml:"root"`

	// Manual mount overrides: drive letter -> subsystem mount point.
	// Useful for subst drives and non-standard automount entries.
	Overrides map[string]string `toml:"overrides"`

	AutoDetect bool `toml:"auto_detect"`
}

type EnvConfig struct {
	// Forward lists host environment variables passed through to every
	// invocation, unconverted.
	Forward []string `toml:"forward"`

	// Block lists variables never forwarded, even when listed in Forward.
	Block []string `toml:"block"`
}

type DefaultsConfig struct {
	// Target is the build target name used when a file defines several
	// and none is named on the command line.
	Target string `toml:"target"`

	// File is the build file consulted when none is given.
	File string `toml:"file"`
}

// Load reads the config from ~/.config/wslbuild/config.toml.
// Returns defaults if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads the config from an explicit path, falling back to the
// defaults when the file is absent.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ForwardedEnv resolves the forward list against the host environment via
// lookup, dropping blocked and unset variables. Pair order follows the
// forward list.
func (c *Config) ForwardedEnv(lookup func(string) (string, bool)) [][2]string {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	blocked := make(map[string]bool, len(c.Env.Block))
	for _, name := range c.Env.Block {
		blocked[name] = true
	}

	var pairs [][2]string
	for _, name := range c.Env.Forward {
		if blocked[name] {
			continue
		}
		if value, ok := lookup(name); ok {
			pairs = append(pairs, [2]string{name, value})
		}
	}
	return pairs
}

func defaults() *Config {
	return &Config{
		Mounts: MountsConfig{
			Root:       "/mnt",
			AutoDetect: true,
		},
		Env: EnvConfig{
			Block: []string{
				"P4PASSWD",
				"P4TICKETS",
				"P4TRUST",
			},
		},
	}
}

// Dir returns the directory holding the configuration and allowlist files.
func Dir() string {
	return filepath.Dir(configPath())
}

func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wslbuild", "config.toml")
	}
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		return filepath.Join(local, "wslbuild", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wslbuild", "config.toml")
}
