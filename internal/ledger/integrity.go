package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/palacehub/backend/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IntegrityReport is the result of comparing a budget's stored
// AmountRaised against the recomputed sum of its contributions.
type IntegrityReport struct {
	BudgetID        uuid.UUID       `json:"budgetId" example:"65392deb-5e92-4268-b114-297faad6cdce"` // ID of the checked budget
	AmountRaised    decimal.Decimal `json:"amountRaised" example:"350"`                              // The stored total
	ContributionSum decimal.Decimal `json:"contributionSum" example:"350"`                           // The recomputed sum over all contributions
	Delta           decimal.Decimal `json:"delta" example:"0"`                                       // AmountRaised minus ContributionSum
	Match           bool            `json:"match" example:"true"`                                    // Whether stored total and sum agree
}

// VerifyBudgetIntegrity recomputes the contribution sum for the budget
// and compares it to the stored AmountRaised.
//
// A mismatch means some write path bypassed RecordContribution. It is
// reported, never repaired silently, rewriting the total without an
// operator looking at the cause could mask a deeper bug.
func (s *Service) VerifyBudgetIntegrity(ctx context.Context, budgetID uuid.UUID) (IntegrityReport, error) {
	db := s.db.WithContext(ctx)

	var budget models.Budget
	err := db.First(&budget, budgetID).Error
	if err != nil {
		return IntegrityReport{}, err
	}

	sum, err := models.ContributionSum(db, budget.ID)
	if err != nil {
		return IntegrityReport{}, err
	}

	report := newReport(budget, sum)
	if !report.Match {
		log.Warn().
			Str("budget-id", budget.ID.String()).
			Str("delta", report.Delta.String()).
			Msg("budget total does not match contribution sum")
	}

	return report, nil
}

// RepairBudgetIntegrity writes the recomputed contribution sum back as
// the budget's AmountRaised. This is the operator path for repairing
// drift found by VerifyBudgetIntegrity.
//
// The returned report describes the state before the repair.
func (s *Service) RepairBudgetIntegrity(ctx context.Context, budgetID uuid.UUID) (IntegrityReport, error) {
	var report IntegrityReport

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		err := tx.First(&budget, budgetID).Error
		if err != nil {
			return err
		}

		sum, err := models.ContributionSum(tx, budget.ID)
		if err != nil {
			return err
		}

		report = newReport(budget, sum)
		if report.Match {
			return nil
		}

		log.Warn().
			Str("budget-id", budget.ID.String()).
			Str("delta", report.Delta.String()).
			Msg("repairing budget total")

		return tx.Model(&models.Budget{}).
			Where("id = ?", budget.ID).
			UpdateColumn("amount_raised", sum).Error
	})
	if err != nil {
		return IntegrityReport{}, classify(err)
	}

	return report, nil
}

func newReport(budget models.Budget, sum decimal.Decimal) IntegrityReport {
	delta := budget.AmountRaised.Sub(sum)

	return IntegrityReport{
		BudgetID:        budget.ID,
		AmountRaised:    budget.AmountRaised,
		ContributionSum: sum,
		Delta:           delta,
		Match:           delta.IsZero(),
	}
}
