package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, "environment: test\nserver:\n  port: 9000\n")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9000 {
		t.Fatalf("port = %d, want 9000", c.Server.Port)
	}
	if c.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("read timeout default lost: %v", c.Server.ReadTimeout)
	}
	if c.Forecast.Offset != 12 {
		t.Fatalf("forecast offset = %d, want 12", c.Forecast.Offset)
	}
	if c.Provider.Type != "store" || c.Mongo.URI != "mongodb://localhost:27017" {
		t.Fatalf("unexpected provider/mongo defaults: %+v %+v", c.Provider, c.Mongo)
	}
	if len(c.Kafka.Brokers) != 1 || c.Kafka.Brokers[0] != "localhost:9092" {
		t.Fatalf("unexpected brokers %v", c.Kafka.Brokers)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad provider":            "provider:\n  type: grpc\n",
		"negative offset":         "forecast:\n  offset: -1\n",
		"offset above cap":        "forecast:\n  offset: 121\n",
		"collector without kafka": "logging:\n  collector:\n    enabled: true\n",
		"bad port":                "server:\n  port: 70000\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	env := map[string]string{
		"MONGO_URL":         "mongodb://db:27017/app",
		"PORT":              "8081",
		"KAFKA_BROKERS":     "k1:9092, k2:9092",
		"REDIS_ADDR":        "cache:6379",
		"PROVIDER_BASE_URL": "http://remote:1337",
	}
	c.ApplyEnv(func(k string) string { return env[k] })

	if c.Mongo.URI != env["MONGO_URL"] || c.Server.Port != 8081 {
		t.Fatalf("mongo/port not applied: %q %d", c.Mongo.URI, c.Server.Port)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("kafka not applied: %+v", c.Kafka.Brokers)
	}
	if !c.Redis.Enabled || c.Redis.Addr != "cache:6379" {
		t.Fatalf("redis not applied")
	}
	if c.Provider.BaseURL != "http://remote:1337" {
		t.Fatalf("provider base url not applied")
	}
}

func TestApplyEnvIgnoresBadPort(t *testing.T) {
	c, _ := Default()
	c.ApplyEnv(func(k string) string {
		if k == "PORT" {
			return "abc"
		}
		return ""
	})
	if c.Server.Port != 1337 {
		t.Fatalf("port = %d, want default 1337", c.Server.Port)
	}
}

func TestConsumerGroupIDIsPerInstance(t *testing.T) {
	c, _ := Default()
	host := func() (string, error) { return "web-1", nil }

	if got := c.ConsumerGroupID(host); got != "findash-web-1" {
		t.Fatalf("group = %q, want findash-web-1", got)
	}

	c.ApplyEnv(func(k string) string {
		if k == "INSTANCE_ID" {
			return "blue"
		}
		return ""
	})
	if got := c.ConsumerGroupID(host); got != "findash-blue" {
		t.Fatalf("group = %q, want findash-blue", got)
	}

	c.Kafka.Consumer.InstanceID = ""
	noHost := func() (string, error) { return "", errors.New("no hostname") }
	if got := c.ConsumerGroupID(noHost); got != "findash" {
		t.Fatalf("group = %q, want findash", got)
	}
}
