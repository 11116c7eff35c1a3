package queue

import (
	"encoding/json"
	"testing"

	"github.com/fleetdesk/internal/config"
)

func TestYieldSettlementTaskID(t *testing.T) {
	if got := YieldSettlementTaskID(YieldSettlementPayload{AgentID: " PTR-1 ", Year: 2024, Month: 3}); got != "settlement:ptr-1:2024-03" {
		t.Fatalf("unexpected task id %s", got)
	}
	if got := YieldSettlementTaskID(YieldSettlementPayload{Year: 2024, Month: 11}); got != "settlement:all:2024-11" {
		t.Fatalf("unexpected task id for all partners %s", got)
	}
	if got := YieldSettlementTaskID(YieldSettlementPayload{}); got != "" {
		t.Fatalf("scheduled payload should not carry a task id, got %s", got)
	}
}

func TestNewPayoutClaimRecordedTask(t *testing.T) {
	task, err := NewPayoutClaimRecordedTask(PayoutClaimRecordedPayload{
		ClaimID:     "CLAIM-AGT-1-3-2024",
		AgentID:     "AGT-1",
		MonthIndex:  2,
		Year:        2024,
		TotalPayout: "600.00",
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if task.Type() != TaskPayoutClaimRecorded {
		t.Fatalf("task type want %s got %s", TaskPayoutClaimRecorded, task.Type())
	}
	var payload PayoutClaimRecordedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.ClaimID != "CLAIM-AGT-1-3-2024" || payload.MonthIndex != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client should report disabled")
	}
	if err := client.EnqueueYieldSettlement(YieldSettlementPayload{Year: 2024, Month: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.EnqueuePayoutClaimRecorded(PayoutClaimRecordedPayload{}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected redis addr %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config %+v", cfg)
	}

	scheduler, err := NewSettlementScheduler(&config.QueueConfig{Enabled: true})
	if err != nil || scheduler != nil {
		t.Fatalf("empty cron should not build a scheduler, got %v %v", scheduler, err)
	}
}
