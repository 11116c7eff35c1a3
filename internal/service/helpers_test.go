package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/queue"
	"github.com/fleetdesk/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testServices struct {
	db       *gorm.DB
	earnings *EarningsService
	equity   *EquityService
	claims   *ClaimService
}

func setupServiceTest(t *testing.T, name string) *testServices {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Agent{},
		&models.Client{},
		&models.Payment{},
		&models.Contract{},
		&models.ClaimRecord{},
		&models.YieldReserveEntry{},
		&models.AgreementAuditLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	engineCfg := config.EngineConfig{
		Attribution:         constants.AttributionPaymentTime,
		Timezone:            "UTC",
		ClaimLockTTLSeconds: 5,
	}
	agentRepo := repository.NewAgentRepository(db)
	clientRepo := repository.NewClientRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contractRepo := repository.NewContractRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	reserveRepo := repository.NewYieldReserveRepository(db)
	auditRepo := repository.NewAgreementAuditLogRepository(db)

	earnings := NewEarningsService(agentRepo, clientRepo, paymentRepo, contractRepo, engineCfg, nil)
	equity := NewEquityService(agentRepo, paymentRepo, reserveRepo, auditRepo, queueClient, engineCfg, nil)
	claims := NewClaimService(db, claimRepo, earnings, queueClient, engineCfg, nil)
	return &testServices{db: db, earnings: earnings, equity: equity, claims: claims}
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

func pct(raw string) models.Percent {
	return models.NewPercentFromDecimal(decimal.RequireFromString(raw))
}

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func createAgent(t *testing.T, db *gorm.DB, agent models.Agent) models.Agent {
	t.Helper()
	if err := db.Create(&agent).Error; err != nil {
		t.Fatalf("create agent %s failed: %v", agent.ID, err)
	}
	return agent
}

func createClient(t *testing.T, db *gorm.DB, id, agentID string, onboarded *time.Time) {
	t.Helper()
	client := models.Client{ID: id, Name: id, AssignedAgentID: agentID, OnboardingDate: onboarded}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client %s failed: %v", id, err)
	}
}

func createPayment(t *testing.T, db *gorm.DB, no, clientID, agentID, amount string, months int, at time.Time) {
	t.Helper()
	payment := models.Payment{
		PaymentNo:     no,
		ClientID:      clientID,
		AgentID:       agentID,
		Amount:        money(amount),
		MonthsCovered: months,
		Date:          at,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("create payment %s failed: %v", no, err)
	}
}

func createPartner(t *testing.T, db *gorm.DB, id string, agreement models.InvestmentAgreement) models.Agent {
	t.Helper()
	return createAgent(t, db, models.Agent{
		ID:              id,
		Name:            id,
		Role:            constants.AgentRolePartner,
		ExperienceLevel: constants.ExperienceLevelPartner,
		Agreement:       agreement,
	})
}

func fixedNow(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
