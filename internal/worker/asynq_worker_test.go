package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/provider"
	"github.com/fleetdesk/internal/queue"
	"github.com/fleetdesk/internal/repository"
	"github.com/fleetdesk/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Agent{}, &models.Payment{}, &models.YieldReserveEntry{}, &models.AgreementAuditLog{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	queueClient, _ := queue.NewClient(nil)
	engineCfg := config.EngineConfig{Attribution: constants.AttributionPaymentTime, Timezone: "UTC"}

	agentRepo := repository.NewAgentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	c := &provider.Container{
		QueueClient:      queueClient,
		AgentRepo:        agentRepo,
		PaymentRepo:      paymentRepo,
		YieldReserveRepo: repository.NewYieldReserveRepository(db),
		AgreementLogRepo: repository.NewAgreementAuditLogRepository(db),
	}
	c.EquityService = service.NewEquityService(agentRepo, paymentRepo, c.YieldReserveRepo, c.AgreementLogRepo, queueClient, engineCfg, nil)
	return NewConsumer(c), db
}

func createWorkerPartner(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	agent := &models.Agent{
		ID:              id,
		Name:            id,
		Role:            constants.AgentRolePartner,
		ExperienceLevel: constants.ExperienceLevelPartner,
		Agreement: models.InvestmentAgreement{
			Principal:        models.NewMoneyFromDecimal(decimal.RequireFromString("10000")),
			EquityShare:      models.NewPercentFromDecimal(decimal.RequireFromString("10")),
			TermMonths:       12,
			PayoutModel:      constants.PayoutModelInterestOnly,
			SmartYieldActive: true,
			MaxMonthlyROI:    models.NewPercentFromDecimal(decimal.RequireFromString("5")),
			InvestmentStatus: constants.InvestmentStatusActive,
		},
	}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("create partner failed: %v", err)
	}
}

func TestHandleYieldSettlementBanksReserve(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	createWorkerPartner(t, db, "PRT-1")

	body, _ := json.Marshal(queue.YieldSettlementPayload{AgentID: "PRT-1", Year: 2024, Month: 1, RevenuePool: "5000"})
	if err := consumer.handleYieldSettlement(context.Background(), asynq.NewTask(queue.TaskYieldSettlement, body)); err != nil {
		t.Fatalf("handle settlement failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.YieldReserveEntry{}).Where("agent_id = ?", "PRT-1").Count(&count).Error; err != nil {
		t.Fatalf("count reserve entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reserve entry, got %d", count)
	}

	// 重复投递保持幂等
	if err := consumer.handleYieldSettlement(context.Background(), asynq.NewTask(queue.TaskYieldSettlement, body)); err != nil {
		t.Fatalf("redelivered settlement failed: %v", err)
	}
	if err := db.Model(&models.YieldReserveEntry{}).Where("agent_id = ?", "PRT-1").Count(&count).Error; err != nil {
		t.Fatalf("count reserve entries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected idempotent settlement, got %d entries", count)
	}
}

func TestHandleYieldSettlementInvalidPayloadSkipsRetry(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	err := consumer.handleYieldSettlement(context.Background(), asynq.NewTask(queue.TaskYieldSettlement, []byte("{bad")))
	if err == nil || !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry error, got %v", err)
	}
}

func TestHandleYieldSettlementInvalidPeriodIsDropped(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	body, _ := json.Marshal(queue.YieldSettlementPayload{AgentID: "PRT-1", Year: 2024, Month: 13})
	if err := consumer.handleYieldSettlement(context.Background(), asynq.NewTask(queue.TaskYieldSettlement, body)); err != nil {
		t.Fatalf("invalid period should not be retried, got %v", err)
	}
}

func TestHandlePayoutClaimRecorded(t *testing.T) {
	consumer, _ := setupWorkerTest(t)
	body, _ := json.Marshal(queue.PayoutClaimRecordedPayload{ClaimID: "CLAIM-AGT-1-1-2024", AgentID: "AGT-1", Year: 2024, TotalPayout: "100.00"})
	if err := consumer.handlePayoutClaimRecorded(context.Background(), asynq.NewTask(queue.TaskPayoutClaimRecorded, body)); err != nil {
		t.Fatalf("handle claim recorded failed: %v", err)
	}
	if err := consumer.handlePayoutClaimRecorded(context.Background(), asynq.NewTask(queue.TaskPayoutClaimRecorded, []byte("x"))); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected skip retry for bad payload, got %v", err)
	}
}

func TestRegisterNilSafe(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
	NewConsumer(&provider.Container{}).Register(nil)
}
