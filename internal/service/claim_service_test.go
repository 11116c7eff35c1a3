package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/engine"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/repository"
)

func setupClaimFixture(t *testing.T, name string) *testServices {
	t.Helper()
	svc := setupServiceTest(t, name)
	createAgent(t, svc.db, models.Agent{
		ID:             "AGT-1",
		Role:           constants.AgentRoleAgent,
		CommissionRate: pct("10"),
		BaseSalary:     money("500"),
	})
	createClient(t, svc.db, "CL-1", "AGT-1", nil)
	createPayment(t, svc.db, "PAY-1", "CL-1", "AGT-1", "1000", 1, utcDay(2024, time.March, 12))
	svc.claims.now = fixedNow(utcDay(2024, time.April, 2))
	return svc
}

func TestClaimServiceClaimPayoutIdempotent(t *testing.T) {
	svc := setupClaimFixture(t, "claim_idempotent")
	ctx := context.Background()

	check, err := svc.claims.TryClaim(ctx, "AGT-1", 2024, 3)
	if err != nil {
		t.Fatalf("try claim failed: %v", err)
	}
	if !check.Allowed || check.ClaimID != "CLAIM-AGT-1-3-2024" {
		t.Fatalf("unexpected first check: %+v", check)
	}

	outcome, err := svc.claims.ClaimPayout(ctx, ClaimInput{AgentID: "AGT-1", Year: 2024, Month: 3, OperatorID: "ADM-1"})
	if err != nil {
		t.Fatalf("claim payout failed: %v", err)
	}
	if outcome.Record.TotalPayout.String() != "600.00" || outcome.Record.MonthIndex != 2 {
		t.Fatalf("unexpected claim record: %+v", outcome.Record)
	}

	check, err = svc.claims.TryClaim(ctx, "agt-1", 2024, 3)
	if err != nil {
		t.Fatalf("try claim after record failed: %v", err)
	}
	if check.Allowed {
		t.Fatalf("second check must not be allowed")
	}

	_, err = svc.claims.ClaimPayout(ctx, ClaimInput{AgentID: "AGT-1", Year: 2024, Month: 3})
	if !errors.Is(err, ErrClaimDuplicate) || !errors.Is(err, engine.ErrDuplicateClaim) {
		t.Fatalf("want duplicate claim error got %v", err)
	}

	rows, total, err := svc.claims.ListClaims(ctx, repository.ClaimListFilter{Page: 1, PageSize: 20, AgentID: "AGT-1"})
	if err != nil {
		t.Fatalf("list claims failed: %v", err)
	}
	if total != 1 || rows[0].ID != "CLAIM-AGT-1-3-2024" {
		t.Fatalf("unexpected claim rows: total=%d rows=%+v", total, rows)
	}

	record, err := svc.claims.GetClaim(ctx, "CLAIM-AGT-1-3-2024")
	if err != nil {
		t.Fatalf("get claim failed: %v", err)
	}
	if record.OperatorID != "ADM-1" {
		t.Fatalf("operator want ADM-1 got %s", record.OperatorID)
	}
}

func TestClaimServiceUsesRegisteredAgentIDForClaimID(t *testing.T) {
	svc := setupClaimFixture(t, "claim_canonical_id")
	ctx := context.Background()

	check, err := svc.claims.TryClaim(ctx, " agt-1 ", 2024, 3)
	if err != nil {
		t.Fatalf("try claim failed: %v", err)
	}
	if check.ClaimID != "CLAIM-AGT-1-3-2024" {
		t.Fatalf("claim id want CLAIM-AGT-1-3-2024 got %s", check.ClaimID)
	}

	outcome, err := svc.claims.ClaimPayout(ctx, ClaimInput{AgentID: "agt-1", Year: 2024, Month: 3})
	if err != nil {
		t.Fatalf("claim payout failed: %v", err)
	}
	if outcome.ClaimID != "CLAIM-AGT-1-3-2024" || outcome.Record.ID != "CLAIM-AGT-1-3-2024" || outcome.Record.AgentID != "AGT-1" {
		t.Fatalf("unexpected claim outcome: id=%s record=%+v", outcome.ClaimID, outcome.Record)
	}

	_, err = svc.claims.ClaimPayout(ctx, ClaimInput{AgentID: "AGT-1", Year: 2024, Month: 3})
	if !errors.Is(err, ErrClaimDuplicate) {
		t.Fatalf("differently cased agent id must hit the same claim, got %v", err)
	}
}

func TestClaimServiceRejectsInvalidWindow(t *testing.T) {
	svc := setupClaimFixture(t, "claim_window")
	ctx := context.Background()
	for _, month := range []int{0, 13} {
		if _, err := svc.claims.TryClaim(ctx, "AGT-1", 2024, month); !errors.Is(err, ErrClaimWindowInvalid) {
			t.Fatalf("month %d want ErrClaimWindowInvalid got %v", month, err)
		}
	}
	if _, err := svc.claims.ClaimPayout(ctx, ClaimInput{AgentID: " ", Year: 2024, Month: 1}); !errors.Is(err, ErrClaimWindowInvalid) {
		t.Fatalf("blank agent want ErrClaimWindowInvalid got %v", err)
	}
}

func TestClaimServiceUnknownAgent(t *testing.T) {
	svc := setupClaimFixture(t, "claim_unknown")
	_, err := svc.claims.ClaimPayout(context.Background(), ClaimInput{AgentID: "AGT-404", Year: 2024, Month: 3})
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("want ErrAgentNotFound got %v", err)
	}
	var count int64
	if err := svc.db.Model(&models.ClaimRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count claims failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("unknown agent must not leave a claim record, got %d", count)
	}
}

func TestClaimServiceGetClaimNotFound(t *testing.T) {
	svc := setupClaimFixture(t, "claim_get_missing")
	if _, err := svc.claims.GetClaim(context.Background(), "CLAIM-NOPE-1-2024"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}
