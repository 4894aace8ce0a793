package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// AnonymousName is used as display name for anonymous contributions
// without a pseudonym.
const AnonymousName = "Anonymous"

// Contributor represents one payment event against a budget.
//
// Contributor records are append-only. They are created exclusively
// through the ledger service and never modified afterwards, the sum
// of their amounts is the source of truth for Budget.AmountRaised.
type Contributor struct {
	DefaultModel
	Name          string
	Amount        decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	PaymentMethod PaymentMethod
	Budget        Budget `json:"-"`
	BudgetID      uuid.UUID
	DepartmentID  uuid.UUID
	AnonymousFlag bool
	Notes         string
}

// PaymentMethod is the payment channel a contribution arrived through.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodMpesa  PaymentMethod = "MPESA"
	PaymentMethodBank   PaymentMethod = "BANK"
	PaymentMethodCheque PaymentMethod = "CHEQUE"
)

// PaymentMethods lists all recognized payment methods.
var PaymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodMpesa, PaymentMethodBank, PaymentMethodCheque}

var (
	ErrContributorAmountNotPositive = errors.New("contribution amounts must be larger than zero")
	ErrContributorPaymentMethod     = errors.New("the payment method must be one of CASH, MPESA, BANK, CHEQUE")
	ErrContributorImmutable         = errors.New("contributor records cannot be changed after creation")
)

func (c *Contributor) BeforeCreate(tx *gorm.DB) error {
	_ = c.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Contributor)
	return c.checkIntegrity(tx, *toSave)
}

// BeforeUpdate rejects every update. A contribution that was recorded
// incorrectly has to be corrected by an operator through the integrity
// repair path, not by rewriting the payment event.
func (c *Contributor) BeforeUpdate(_ *gorm.DB) error {
	return ErrContributorImmutable
}

// checkIntegrity verifies references to other resources
func (c *Contributor) checkIntegrity(tx *gorm.DB, toSave Contributor) error {
	return tx.First(&Budget{}, toSave.BudgetID).Error
}

func (c *Contributor) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Notes = strings.TrimSpace(c.Notes)

	if c.Name == "" && c.AnonymousFlag {
		c.Name = AnonymousName
	}

	if !slices.Contains(PaymentMethods, c.PaymentMethod) {
		return ErrContributorPaymentMethod
	}

	return nil
}

func (c *Contributor) AfterSave(_ *gorm.DB) error {
	if !decimal.Decimal.IsPositive(c.Amount) {
		return ErrContributorAmountNotPositive
	}

	return nil
}

// ContributionSum returns the sum of the amounts of all non-deleted
// contributors for the budget.
//
// The sum is computed over the individual amounts in Go. SQL SUM() on
// a DECIMAL column runs in floating point on sqlite and drifts from
// the exact total.
func ContributionSum(db *gorm.DB, budgetID uuid.UUID) (decimal.Decimal, error) {
	var amounts []decimal.Decimal

	err := db.Table("contributors").
		Where("budget_id = ?", budgetID).
		Where("deleted_at IS NULL").
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, amount := range amounts {
		sum = sum.Add(amount)
	}

	return sum, nil
}
