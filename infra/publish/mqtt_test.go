package publish

import (
	"strings"
	"testing"
)

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if !strings.HasPrefix(cfg.ClientID, "pollenguard-") {
		t.Fatalf("unexpected client id: %q", cfg.ClientID)
	}
	if cfg.Topic != "pollenguard/reports" {
		t.Fatalf("unexpected topic: %q", cfg.Topic)
	}

	set := Config{ClientID: "fixed", Topic: "custom/topic"}
	set.SetDefaults()
	if set.ClientID != "fixed" || set.Topic != "custom/topic" {
		t.Fatalf("explicit values overridden: %+v", set)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Fatalf("disabled publisher must validate: %v", err)
	}
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatal("enabled publisher without broker must fail")
	}
	if err := (Config{Enabled: true, Broker: "tcp://localhost:1883"}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
