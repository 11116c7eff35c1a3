package engine

import (
	"fmt"
	"time"

	"github.com/fleetdesk/internal/constants"
	"github.com/fleetdesk/internal/models"

	"github.com/shopspring/decimal"
)

// 等级阶梯门槛（直属客户数）
const (
	IndependentPortfolioThreshold = 10
	MentorPortfolioThreshold      = 25
	PartnerPortfolioThreshold     = 50
	// MentorGraduateOverride 导师出师学员达到该数量即可申请合伙人，与客户数门槛为“或”关系
	MentorGraduateOverride = 5
)

// RankProgress 晋升进度（仅供参考，不修改档案）
type RankProgress struct {
	AgentID                string  `json:"agent_id"`
	CurrentLevel           string  `json:"current_level"`
	NextLevel              string  `json:"next_level"`
	Label                  string  `json:"label"`
	Subtext                string  `json:"subtext"`
	Portfolio              int     `json:"portfolio"`
	Target                 int     `json:"target"`
	Percentage             float64 `json:"percentage"`
	GraduatedTrainees      int     `json:"graduated_trainees"`
	PromotionEligible      bool    `json:"promotion_eligible"`
	CanApplyForPartnership bool    `json:"can_apply_for_partnership"`
}

// ComputeRankProgress 根据直属客户数与出师学员数计算晋升进度
// asOf 之后签约的客户不计入；asOf 为零值时统计全部直属客户
func ComputeRankProgress(agent *models.Agent, h Hierarchy, asOf time.Time) (RankProgress, error) {
	if agent == nil {
		return RankProgress{
			CurrentLevel: constants.ExperienceLevelTrainee,
			NextLevel:    constants.ExperienceLevelIndependent,
			Target:       IndependentPortfolioThreshold,
		}, ErrInvalidAgentReference
	}

	level := NormalizeLevel(agent.ExperienceLevel)
	if !isKnownLevel(level) {
		level = constants.ExperienceLevelTrainee
	}
	graduates := agent.GraduatedTraineesCount
	if graduates < 0 {
		graduates = 0
	}
	progress := RankProgress{
		AgentID:           agent.ID,
		CurrentLevel:      level,
		Portfolio:         countPortfolio(h.DirectClients, asOf),
		GraduatedTrainees: graduates,
	}

	if level == constants.ExperienceLevelPartner {
		progress.Label = "Partner"
		progress.Subtext = "Equity partner"
		progress.Target = PartnerPortfolioThreshold
		progress.Percentage = 100
		return progress, nil
	}

	isMentorTier := level == constants.ExperienceLevelMentor || level == constants.ExperienceLevelLead
	progress.CanApplyForPartnership = (isMentorTier && progress.Portfolio >= PartnerPortfolioThreshold) ||
		(level == constants.ExperienceLevelMentor && graduates >= MentorGraduateOverride)

	switch {
	case progress.Portfolio >= MentorPortfolioThreshold || isMentorTier:
		progress.Target = PartnerPortfolioThreshold
		progress.Label = "Partner track"
	case progress.Portfolio >= IndependentPortfolioThreshold:
		progress.Target = MentorPortfolioThreshold
		progress.Label = "Mentor track"
	default:
		progress.Target = IndependentPortfolioThreshold
		progress.Label = "Road to Independent"
	}

	progress.NextLevel = nextLevel(level)
	switch level {
	case constants.ExperienceLevelTrainee:
		progress.PromotionEligible = progress.Portfolio >= IndependentPortfolioThreshold
	case constants.ExperienceLevelIndependent:
		progress.PromotionEligible = progress.Portfolio >= MentorPortfolioThreshold
	default:
		progress.NextLevel = constants.ExperienceLevelPartner
		progress.PromotionEligible = progress.CanApplyForPartnership
	}

	progress.Percentage = progressPercentage(progress.Portfolio, progress.Target)
	progress.Subtext = rankSubtext(progress, isMentorTier)
	return progress, nil
}

func countPortfolio(clients []models.Client, asOf time.Time) int {
	count := 0
	for _, client := range clients {
		if !asOf.IsZero() && client.OnboardingDate != nil && client.OnboardingDate.After(asOf) {
			continue
		}
		count++
	}
	return count
}

func progressPercentage(portfolio, target int) float64 {
	if target <= 0 {
		return 100
	}
	pct := decimal.NewFromInt(int64(portfolio)).Mul(hundred).Div(decimal.NewFromInt(int64(target)))
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(2).InexactFloat64()
}

func isKnownLevel(level string) bool {
	for _, candidate := range constants.ExperienceLevelLadder {
		if candidate == level {
			return true
		}
	}
	return false
}

func nextLevel(level string) string {
	for i, candidate := range constants.ExperienceLevelLadder {
		if candidate == level && i+1 < len(constants.ExperienceLevelLadder) {
			return constants.ExperienceLevelLadder[i+1]
		}
	}
	return constants.ExperienceLevelIndependent
}

func rankSubtext(p RankProgress, isMentorTier bool) string {
	if p.CanApplyForPartnership {
		return "Eligible to apply for partnership"
	}
	remaining := p.Target - p.Portfolio
	if remaining < 0 {
		remaining = 0
	}
	if p.CurrentLevel == constants.ExperienceLevelMentor {
		return fmt.Sprintf("%d more clients or %d more graduated trainees to apply for partnership",
			remaining, MentorGraduateOverride-p.GraduatedTrainees)
	}
	if p.PromotionEligible {
		return fmt.Sprintf("Eligible for %s promotion", p.NextLevel)
	}
	if isMentorTier || p.Target == PartnerPortfolioThreshold {
		return fmt.Sprintf("%d more clients to reach %d", remaining, p.Target)
	}
	return fmt.Sprintf("%d more clients to unlock %s", remaining, targetLevelName(p.Target))
}

func targetLevelName(target int) string {
	switch target {
	case IndependentPortfolioThreshold:
		return constants.ExperienceLevelIndependent
	case MentorPortfolioThreshold:
		return constants.ExperienceLevelMentor
	default:
		return constants.ExperienceLevelPartner
	}
}
