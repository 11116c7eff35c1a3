package seed

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

// Fixture 演示数据文件结构
type Fixture struct {
	Agents    []AgentFixture    `yaml:"agents"`
	Clients   []ClientFixture   `yaml:"clients"`
	Payments  []PaymentFixture  `yaml:"payments"`
	Contracts []ContractFixture `yaml:"contracts"`
}

// AgentFixture 业务员数据
type AgentFixture struct {
	ID                     string            `yaml:"id"`
	Name                   string            `yaml:"name"`
	Role                   string            `yaml:"role"`
	ParentAgentID          string            `yaml:"parent_agent_id"`
	ExperienceLevel        string            `yaml:"experience_level"`
	CommissionRate         string            `yaml:"commission_rate"`
	BaseSalary             string            `yaml:"base_salary"`
	PerformanceBonus       string            `yaml:"performance_bonus"`
	GraduatedTraineesCount int               `yaml:"graduated_trainees_count"`
	Agreement              *AgreementFixture `yaml:"agreement"`
}

// AgreementFixture 合伙人协议数据
type AgreementFixture struct {
	Principal        string `yaml:"principal"`
	EquityShare      string `yaml:"equity_share"`
	TermMonths       int    `yaml:"term_months"`
	PayoutModel      string `yaml:"payout_model"`
	SmartYieldActive bool   `yaml:"smart_yield_active"`
	MaxMonthlyROI    string `yaml:"max_monthly_roi"`
	Status           string `yaml:"status"`
	ActivatedAt      string `yaml:"activated_at"`
}

// ClientFixture 客户数据
type ClientFixture struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	AssignedAgentID string `yaml:"assigned_agent_id"`
	OnboardingDate  string `yaml:"onboarding_date"`
}

// PaymentFixture 回款数据
type PaymentFixture struct {
	PaymentNo     string `yaml:"payment_no"`
	ClientID      string `yaml:"client_id"`
	AgentID       string `yaml:"agent_id"`
	Amount        string `yaml:"amount"`
	MonthsCovered int    `yaml:"months_covered"`
	Date          string `yaml:"date"`
}

// ContractFixture 合同数据
type ContractFixture struct {
	ContractNo   string `yaml:"contract_no"`
	ClientID     string `yaml:"client_id"`
	VehicleCount int    `yaml:"vehicle_count"`
	MonthlyFee   string `yaml:"monthly_fee"`
	Status       string `yaml:"status"`
	StartDate    string `yaml:"start_date"`
	EndDate      string `yaml:"end_date"`
}

// Result 写入统计，已存在的记录计入 Skipped
type Result struct {
	Created int
	Skipped int
}

// LoadFile 读取 YAML 演示数据
func LoadFile(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture failed: %w", err)
	}
	return Parse(raw)
}

// Parse 解析 YAML 演示数据
func Parse(raw []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture failed: %w", err)
	}
	return &fixture, nil
}

// Apply 在单个事务内写入演示数据，主键或单号已存在的记录保持不变
func Apply(db *gorm.DB, fixture *Fixture, loc *time.Location) (Result, error) {
	var result Result
	if db == nil || fixture == nil {
		return result, fmt.Errorf("seed db or fixture is nil")
	}
	if loc == nil {
		loc = time.UTC
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, item := range fixture.Agents {
			agent, err := item.toModel(loc)
			if err != nil {
				return err
			}
			if err := insertIgnore(tx, agent, &result); err != nil {
				return fmt.Errorf("seed agent %s failed: %w", item.ID, err)
			}
		}
		for _, item := range fixture.Clients {
			client, err := item.toModel(loc)
			if err != nil {
				return err
			}
			if err := insertIgnore(tx, client, &result); err != nil {
				return fmt.Errorf("seed client %s failed: %w", item.ID, err)
			}
		}
		for _, item := range fixture.Payments {
			payment, err := item.toModel(loc)
			if err != nil {
				return err
			}
			if err := insertIgnore(tx, payment, &result); err != nil {
				return fmt.Errorf("seed payment %s failed: %w", item.PaymentNo, err)
			}
		}
		for _, item := range fixture.Contracts {
			contract, err := item.toModel(loc)
			if err != nil {
				return err
			}
			if err := insertIgnore(tx, contract, &result); err != nil {
				return fmt.Errorf("seed contract %s failed: %w", item.ContractNo, err)
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	logger.Infow("seed_fixture_applied", "created", result.Created, "skipped", result.Skipped)
	return result, nil
}

func insertIgnore(tx *gorm.DB, value interface{}, result *Result) error {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		result.Created++
	} else {
		result.Skipped++
	}
	return nil
}

func (f AgentFixture) toModel(loc *time.Location) (*models.Agent, error) {
	id := strings.TrimSpace(f.ID)
	if id == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	role := strings.ToLower(strings.TrimSpace(f.Role))
	if role == "" {
		role = constants.AgentRoleAgent
	}
	agent := &models.Agent{
		ID:                     id,
		Name:                   strings.TrimSpace(f.Name),
		Role:                   role,
		ParentAgentID:          strings.TrimSpace(f.ParentAgentID),
		ExperienceLevel:        strings.ToLower(strings.TrimSpace(f.ExperienceLevel)),
		CommissionRate:         models.NewPercentFromString(f.CommissionRate),
		BaseSalary:             models.NewMoneyFromString(f.BaseSalary),
		PerformanceBonus:       models.NewMoneyFromString(f.PerformanceBonus),
		GraduatedTraineesCount: f.GraduatedTraineesCount,
	}
	if f.Agreement != nil {
		activatedAt, err := parseOptionalDate(f.Agreement.ActivatedAt, loc)
		if err != nil {
			return nil, fmt.Errorf("agent %s agreement: %w", id, err)
		}
		agent.Agreement = models.InvestmentAgreement{
			Principal:        models.NewMoneyFromString(f.Agreement.Principal),
			EquityShare:      models.NewPercentFromString(f.Agreement.EquityShare),
			TermMonths:       f.Agreement.TermMonths,
			PayoutModel:      strings.ToLower(strings.TrimSpace(f.Agreement.PayoutModel)),
			SmartYieldActive: f.Agreement.SmartYieldActive,
			MaxMonthlyROI:    models.NewPercentFromString(f.Agreement.MaxMonthlyROI),
			InvestmentStatus: strings.ToLower(strings.TrimSpace(f.Agreement.Status)),
			ActivatedAt:      activatedAt,
		}
	}
	return agent, nil
}

func (f ClientFixture) toModel(loc *time.Location) (*models.Client, error) {
	id := strings.TrimSpace(f.ID)
	if id == "" {
		return nil, fmt.Errorf("client id is required")
	}
	onboarded, err := parseOptionalDate(f.OnboardingDate, loc)
	if err != nil {
		return nil, fmt.Errorf("client %s: %w", id, err)
	}
	return &models.Client{
		ID:              id,
		Name:            strings.TrimSpace(f.Name),
		AssignedAgentID: strings.TrimSpace(f.AssignedAgentID),
		OnboardingDate:  onboarded,
	}, nil
}

func (f PaymentFixture) toModel(loc *time.Location) (*models.Payment, error) {
	no := strings.TrimSpace(f.PaymentNo)
	if no == "" {
		return nil, fmt.Errorf("payment_no is required")
	}
	paidAt, err := parseOptionalDate(f.Date, loc)
	if err != nil || paidAt == nil {
		return nil, fmt.Errorf("payment %s: invalid date %q", no, f.Date)
	}
	months := f.MonthsCovered
	if months <= 0 {
		months = 1
	}
	return &models.Payment{
		PaymentNo:     no,
		ClientID:      strings.TrimSpace(f.ClientID),
		AgentID:       strings.TrimSpace(f.AgentID),
		Amount:        models.NewMoneyFromString(f.Amount),
		MonthsCovered: months,
		Date:          *paidAt,
	}, nil
}

func (f ContractFixture) toModel(loc *time.Location) (*models.Contract, error) {
	no := strings.TrimSpace(f.ContractNo)
	if no == "" {
		return nil, fmt.Errorf("contract_no is required")
	}
	start, err := parseOptionalDate(f.StartDate, loc)
	if err != nil || start == nil {
		return nil, fmt.Errorf("contract %s: invalid start_date %q", no, f.StartDate)
	}
	end, err := parseOptionalDate(f.EndDate, loc)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", no, err)
	}
	status := strings.ToLower(strings.TrimSpace(f.Status))
	if status == "" {
		status = constants.ContractStatusActive
	}
	return &models.Contract{
		ContractNo:   no,
		ClientID:     strings.TrimSpace(f.ClientID),
		VehicleCount: f.VehicleCount,
		MonthlyFee:   models.NewMoneyFromString(f.MonthlyFee),
		Status:       status,
		StartDate:    *start,
		EndDate:      end,
	}, nil
}

func parseOptionalDate(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	return &parsed, nil
}
