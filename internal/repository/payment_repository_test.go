package repository

import (
	"testing"
	"time"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"
)

func TestPaymentRepositoryListInRangeHalfOpen(t *testing.T) {
	db := setupRepositoryTestDB(t, "payment_repo_range")
	repo := NewPaymentRepository(db)

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	payments := []models.Payment{
		{PaymentNo: "PAY-1", ClientID: "C1", Amount: repoMoney("100"), MonthsCovered: 1, Date: start},
		{PaymentNo: "PAY-2", ClientID: "C1", Amount: repoMoney("200"), MonthsCovered: 1, Date: start.Add(10 * 24 * time.Hour)},
		{PaymentNo: "PAY-3", ClientID: "C1", Amount: repoMoney("400"), MonthsCovered: 1, Date: end},
		{PaymentNo: "PAY-4", ClientID: "C2", Amount: repoMoney("800"), MonthsCovered: 1, Date: start.Add(-time.Second)},
	}
	for i := range payments {
		if err := repo.Create(&payments[i]); err != nil {
			t.Fatalf("create payment failed: %v", err)
		}
	}

	rows, err := repo.ListInRange(start, end)
	if err != nil {
		t.Fatalf("list in range failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 payments in march, got %d", len(rows))
	}

	sum, err := repo.SumInRange(start, end)
	if err != nil {
		t.Fatalf("sum in range failed: %v", err)
	}
	if !sum.Equal(repoMoney("300").Decimal) {
		t.Fatalf("expected sum 300, got %s", sum.String())
	}

	rows, total, err := repo.ListAdmin(PaymentListFilter{ClientID: "c1", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("expected 3 payments for C1, got total=%d len=%d", total, len(rows))
	}
}

func TestContractRepositoryCountActiveByClients(t *testing.T) {
	db := setupRepositoryTestDB(t, "contract_repo_count")
	repo := NewContractRepository(db)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	contracts := []models.Contract{
		{ContractNo: "CT-1", ClientID: "C1", Status: constants.ContractStatusActive, StartDate: start},
		{ContractNo: "CT-2", ClientID: "C1", Status: constants.ContractStatusEnded, StartDate: start},
		{ContractNo: "CT-3", ClientID: "C2", Status: constants.ContractStatusActive, StartDate: start},
		{ContractNo: "CT-4", ClientID: "C3", Status: constants.ContractStatusActive, StartDate: start},
	}
	for i := range contracts {
		if err := repo.Create(&contracts[i]); err != nil {
			t.Fatalf("create contract failed: %v", err)
		}
	}

	count, err := repo.CountActiveByClients([]string{"c1", "C2", ""})
	if err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 active contracts, got %d", count)
	}

	count, err = repo.CountActiveByClients(nil)
	if err != nil || count != 0 {
		t.Fatalf("empty client list should count 0, got %d (%v)", count, err)
	}
}
