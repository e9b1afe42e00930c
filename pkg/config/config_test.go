package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Fetch.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url %q", c.Fetch.BaseURL)
	}
	if c.Fetch.Timeout != 30*time.Second || c.Fetch.Retries != 3 || c.Fetch.RetryDelay != time.Second {
		t.Fatalf("unexpected fetch defaults %+v", c.Fetch)
	}
	if c.Fetch.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %v", c.Fetch.CacheTTL)
	}
	if c.Cache.Backend != "memory" || c.Source.Type != "http" {
		t.Fatalf("unexpected backend/source %q/%q", c.Cache.Backend, c.Source.Type)
	}
	if len(c.Exporter.Ranges) != 4 || c.Exporter.Ranges[3] != "all" {
		t.Fatalf("unexpected exporter ranges %v", c.Exporter.Ranges)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
environment: prod
fetch:
  base_url: https://api.example.com
  retries: 0
  timeout: 2s
exporter:
  ranges: [week]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Fetch.BaseURL != "https://api.example.com" || c.Fetch.Retries != 0 || c.Fetch.Timeout != 2*time.Second {
		t.Fatalf("unexpected fetch %+v", c.Fetch)
	}
	if len(c.Exporter.Ranges) != 1 || c.Exporter.Ranges[0] != "week" {
		t.Fatalf("unexpected ranges %v", c.Exporter.Ranges)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"unknown source":         "source:\n  type: mongo\n",
		"clickhouse source":      "source:\n  type: clickhouse\n",
		"exporter without kafka": "exporter:\n  enabled: true\n",
		"bad range":              "exporter:\n  ranges: [year]\n",
		"bad cache backend":      "cache:\n  backend: disk\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	env := map[string]string{
		"BETPULSE_API_BASE_URL":  "http://bets.internal",
		"BETPULSE_FETCH_TIMEOUT": "5s",
		"BETPULSE_FETCH_RETRIES": "1",
		"BETPULSE_KAFKA_BROKERS": "k1:9092, k2:9092,",
		"BETPULSE_SOURCE":        " ClickHouse ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	if err := c.ApplyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if c.Fetch.BaseURL != "http://bets.internal" || c.Fetch.Timeout != 5*time.Second || c.Fetch.Retries != 1 {
		t.Fatalf("unexpected fetch %+v", c.Fetch)
	}
	if len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", c.Kafka.Brokers)
	}
	if c.Source.Type != "clickhouse" {
		t.Fatalf("unexpected source %q", c.Source.Type)
	}

	env["BETPULSE_FETCH_RETRIES"] = "many"
	if err := c.ApplyEnv(lookup); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("environment: test\nserver:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("unexpected port %d", c.Server.Port)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
