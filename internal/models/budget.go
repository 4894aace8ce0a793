package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Budget represents a fundraising target for a department.
//
// AmountRaised is a derived value. It always equals the sum of the
// amounts of all non-deleted contributors referencing the budget and
// is only ever written by the ledger service.
type Budget struct {
	DefaultModel
	Name          string
	Note          string
	TargetAmount  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	AmountRaised  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Department    Department      `json:"-"`
	DepartmentID  uuid.UUID
	Status        BudgetStatus `gorm:"default:'OPEN'"`
	Deadline      time.Time
	LinkedEventID *uuid.UUID
}

// BudgetStatus is the lifecycle state of a budget.
type BudgetStatus string

const (
	BudgetStatusOpen      BudgetStatus = "OPEN"
	BudgetStatusClosed    BudgetStatus = "CLOSED"
	BudgetStatusCompleted BudgetStatus = "COMPLETED"
)

var budgetStatuses = []BudgetStatus{BudgetStatusOpen, BudgetStatusClosed, BudgetStatusCompleted}

var (
	ErrBudgetTargetNotPositive   = errors.New("the budget target amount must be larger than zero")
	ErrBudgetStatusInvalid       = errors.New("the budget status must be one of OPEN, CLOSED, COMPLETED")
	ErrBudgetDepartmentImmutable = errors.New("the department of a budget cannot be changed")
)

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	_ = b.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Budget)
	return b.checkIntegrity(tx, *toSave)
}

// BeforeUpdate keeps the owning department stable. Administrative
// edits may change the target, status and deadline, never the
// department a budget belongs to.
func (b *Budget) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("DepartmentID") {
		return ErrBudgetDepartmentImmutable
	}

	return nil
}

// checkIntegrity verifies references to other resources
func (b *Budget) checkIntegrity(tx *gorm.DB, toSave Budget) error {
	return tx.First(&Department{}, toSave.DepartmentID).Error
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Note = strings.TrimSpace(b.Note)

	if b.Status == "" {
		b.Status = BudgetStatusOpen
	}

	if !slices.Contains(budgetStatuses, b.Status) {
		return ErrBudgetStatusInvalid
	}

	return nil
}

func (b *Budget) AfterSave(_ *gorm.DB) error {
	if !decimal.Decimal.IsPositive(b.TargetAmount) {
		return ErrBudgetTargetNotPositive
	}

	return nil
}
