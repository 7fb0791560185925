// Package config loads harness defaults from an optional TOML file, with
// environment overrides for the streaming settings.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Nats struct {
	URL     string `toml:"url"`
	Subject string `toml:"subject"`
}

type Config struct {
	CompileCommand    string `toml:"compile_command"`
	CompileTimeoutSec int    `toml:"compile_timeout_sec"`
	TimeoutSec        int    `toml:"timeout_sec"`
	MemoryLimitKiB    int64  `toml:"memory_limit_kib"`
	Workers           int    `toml:"workers"`
	InExt             string `toml:"in_ext"`
	OutExt            string `toml:"out_ext"`
	Nats              Nats   `toml:"nats"`
}

func Default() Config {
	return Config{
		CompileCommand:    "g++ -std=c++17 -O3 -static <IN> -o <OUT>",
		CompileTimeoutSec: 30,
		TimeoutSec:        5,
		MemoryLimitKiB:    256 * 1024,
		Workers:           runtime.NumCPU(),
		InExt:             ".in",
		OutExt:            ".out",
		Nats:              Nats{Subject: "stester.results"},
	}
}

// Load reads path on top of the defaults. A missing file is not an error;
// the defaults apply. NATS settings can also come from the environment
// (optionally via a .env file): STESTER_NATS_URL, STESTER_NATS_SUBJECT.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	_ = godotenv.Load()
	if url := os.Getenv("STESTER_NATS_URL"); url != "" {
		cfg.Nats.URL = url
	}
	if subject := os.Getenv("STESTER_NATS_SUBJECT"); subject != "" {
		cfg.Nats.Subject = subject
	}

	return cfg, nil
}

// Validate rejects settings that cannot drive a run. Call it after every
// override source (file, environment, flags) has been applied.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.TimeoutSec < 1 {
		return fmt.Errorf("timeout_sec must be at least 1, got %d", c.TimeoutSec)
	}
	if c.CompileTimeoutSec < 1 {
		return fmt.Errorf("compile_timeout_sec must be at least 1, got %d", c.CompileTimeoutSec)
	}
	if c.MemoryLimitKiB < 1 {
		return fmt.Errorf("memory_limit_kib must be at least 1, got %d", c.MemoryLimitKiB)
	}
	return nil
}
