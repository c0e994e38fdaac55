package config

import (
	"testing"
	"time"
)

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText() unexpected error = %v", err)
	}
	if time.Duration(d) != 90*time.Second {
		t.Errorf("UnmarshalText(90s) = %v, want 90s", time.Duration(d))
	}

	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() unexpected error = %v", err)
	}
	if string(text) != "1m30s" {
		t.Errorf("MarshalText() = %v, want 1m30s", string(text))
	}

	if err := d.UnmarshalText([]byte("not-a-duration")); err == nil {
		t.Error("UnmarshalText(not-a-duration) error = nil, want error")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if time.Duration(cfg.Git.Timeout) != 5*time.Second {
		t.Errorf("Git.Timeout = %v, want 5s", cfg.Git.Timeout)
	}
	if cfg.Health.BaseScore != 100 {
		t.Errorf("Health.BaseScore = %v, want 100", cfg.Health.BaseScore)
	}
	if cfg.Health.HealthyThreshold != 80 {
		t.Errorf("Health.HealthyThreshold = %v, want 80", cfg.Health.HealthyThreshold)
	}
	if !cfg.Notifications.Enabled {
		t.Error("Notifications.Enabled = false, want true")
	}
}

func TestToTTLConfig(t *testing.T) {
	cfg := DefaultConfig()
	ttls := cfg.Git.ToTTLConfig()

	if ttls.Dirty != 30*time.Second {
		t.Errorf("Dirty TTL = %v, want 30s", ttls.Dirty)
	}
	if ttls.Branch != 60*time.Second {
		t.Errorf("Branch TTL = %v, want 1m", ttls.Branch)
	}
	if ttls.RemoteURL != 120*time.Second {
		t.Errorf("RemoteURL TTL = %v, want 2m", ttls.RemoteURL)
	}
}

func TestGetDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/data/dugger"

	if got := GetDBPath(cfg); got != "/data/dugger/dugger.db" {
		t.Errorf("GetDBPath() = %v, want /data/dugger/dugger.db", got)
	}
}
