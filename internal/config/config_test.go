package config

import (
	"testing"
	"time"

	"github.com/fleetdesk/internal/constants"

	"github.com/spf13/viper"
)

func TestSetDefaultsEngineSection(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Engine.Attribution != constants.AttributionPaymentTime {
		t.Fatalf("default attribution want payment_time got %s", cfg.Engine.Attribution)
	}
	if cfg.Engine.ClaimLockTTL() != 30*time.Second {
		t.Fatalf("default claim lock ttl want 30s got %s", cfg.Engine.ClaimLockTTL())
	}
	if cfg.Queue.Queues[constants.QueueCritical] != 5 {
		t.Fatalf("critical queue weight want 5 got %d", cfg.Queue.Queues[constants.QueueCritical])
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Fatalf("metrics path want /metrics got %s", cfg.Metrics.Path)
	}
}

func TestEngineConfigLocation(t *testing.T) {
	if loc := (EngineConfig{}).Location(); loc != time.UTC {
		t.Fatalf("empty timezone should fall back to UTC, got %s", loc)
	}
	if loc := (EngineConfig{Timezone: "Not/AZone"}).Location(); loc != time.UTC {
		t.Fatalf("invalid timezone should fall back to UTC, got %s", loc)
	}
	loc := (EngineConfig{Timezone: "Asia/Shanghai"}).Location()
	if loc.String() != "Asia/Shanghai" {
		t.Fatalf("timezone want Asia/Shanghai got %s", loc)
	}
}

func TestNormalizeAttribution(t *testing.T) {
	if got := normalizeAttribution(" QUERY_TIME "); got != constants.AttributionQueryTime {
		t.Fatalf("attribution want query_time got %s", got)
	}
	if got := normalizeAttribution("bogus"); got != constants.AttributionPaymentTime {
		t.Fatalf("unknown attribution should default to payment_time, got %s", got)
	}
}
