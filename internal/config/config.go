/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package config loads process configuration for the aivcs control plane
// from an optional YAML file, overlaid by environment variables. Env vars
// always win, matching the teacher's convention of treating CRD specs as
// the low-precedence default and runtime overrides as authoritative.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StorageBackend names a RunLedger/ReleaseRegistry/CasStore backend. It is
// loaded and overridable but nothing in this module reads it to choose an
// implementation, and no Kubernetes backend exists.
type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
	StorageK8s    StorageBackend = "k8s"
)

// Config is the top-level process configuration.
type Config struct {
	// CasRoot is a filesystem root for a CAS. No CasStore in this module
	// reads it; there is no filesystem-backed store.
	CasRoot string `yaml:"casRoot"`
	// SQLiteDSN is a data source name for the SQLite-backed storage
	// implementations. Loaded only; nothing passes it to sqlite.Open.
	SQLiteDSN string `yaml:"sqliteDSN"`
	// Storage names a backend. Loaded only; no startup code reads it.
	Storage StorageBackend `yaml:"storage"`
	// OTLPEndpoint is an OTel collector gRPC endpoint. Loaded only; nothing
	// passes it to telemetry.InitTraceProvider.
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	// SandboxPolicyFile names a sandbox policy file. Loaded only; no code
	// reads the file or replaces StandardDevPolicy with it.
	SandboxPolicyFile string `yaml:"sandboxPolicyFile"`
	// DeploySchedule is an optional cron expression driving a periodic
	// deploy_by_digest trigger; empty disables scheduling.
	DeploySchedule string `yaml:"deploySchedule"`
}

// Default returns the zero-config defaults: in-memory storage rooted at
// a local directory, tracing disabled, no scheduled deploys.
func Default() Config {
	return Config{
		CasRoot: "./data/cas",
		Storage: StorageMemory,
	}
}

// Load reads configuration from path (if non-empty) as a YAML overlay on
// Default, then applies environment variable overrides. A missing path
// is not an error; it simply yields Default with env overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config file %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("AIVCS_CAS_ROOT"); ok {
		cfg.CasRoot = v
	}
	if v, ok := os.LookupEnv("AIVCS_SQLITE_DSN"); ok {
		cfg.SQLiteDSN = v
	}
	if v, ok := os.LookupEnv("AIVCS_STORAGE"); ok {
		cfg.Storage = StorageBackend(v)
	}
	if v, ok := os.LookupEnv("AIVCS_OTLP_ENDPOINT"); ok {
		cfg.OTLPEndpoint = v
	}
	if v, ok := os.LookupEnv("AIVCS_SANDBOX_POLICY_FILE"); ok {
		cfg.SandboxPolicyFile = v
	}
	if v, ok := os.LookupEnv("AIVCS_DEPLOY_SCHEDULE"); ok {
		cfg.DeploySchedule = v
	}
}
