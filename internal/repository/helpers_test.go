package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/fleetdesk/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T, name string) *gorm.DB {
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
	return db
}

func repoMoney(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

func repoPercent(raw string) models.Percent {
	return models.NewPercentFromDecimal(decimal.RequireFromString(raw))
}
