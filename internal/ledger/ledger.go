// Package ledger implements the contribution ledger.
//
// Recording a contribution writes two resources as one unit: the
// contributor record itself and the derived AmountRaised total of the
// budget it belongs to. Both writes happen in a single database
// transaction, so the total never drifts from the sum of the recorded
// contributions, regardless of concurrent calls or partial failure.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/palacehub/backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxAmount is the largest value DECIMAL(20,8) can hold. Amounts and
// budget totals beyond it are refused instead of silently truncated.
var MaxAmount = decimal.RequireFromString("999999999999.99999999")

const (
	maxNameLength  = 200
	maxNotesLength = 1000

	// One initial attempt plus two retries for transient storage errors
	maxAttempts    = 3
	initialBackoff = 25 * time.Millisecond
)

// Service records contributions against budgets.
//
// The storage handle is passed in explicitly so that the service owns
// its dependency instead of reaching for process-wide state.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ContributionInput is the fully typed input for RecordContribution.
// All fields are validated before a transaction is started.
type ContributionInput struct {
	Name          string
	Amount        decimal.Decimal
	PaymentMethod models.PaymentMethod
	BudgetID      uuid.UUID
	DepartmentID  uuid.UUID // Optional. Must match the budget's department when set.
	AnonymousFlag bool
	Notes         string
}

func (input *ContributionInput) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	input.Notes = strings.TrimSpace(input.Notes)

	if input.Name == "" {
		if !input.AnonymousFlag {
			return ErrNameRequired
		}

		input.Name = models.AnonymousName
	}

	if len(input.Name) > maxNameLength {
		return ErrNameTooLong
	}

	if len(input.Notes) > maxNotesLength {
		return ErrNotesTooLong
	}

	if !input.Amount.IsPositive() {
		return models.ErrContributorAmountNotPositive
	}

	if input.Amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}

	if !validPaymentMethod(input.PaymentMethod) {
		return models.ErrContributorPaymentMethod
	}

	if input.BudgetID == uuid.Nil {
		return ErrBudgetIDMissing
	}

	return nil
}

func validPaymentMethod(method models.PaymentMethod) bool {
	for _, m := range models.PaymentMethods {
		if m == method {
			return true
		}
	}

	return false
}

// Receipt is returned for a successfully recorded contribution. It
// carries the budget total after the increment so that callers can
// refresh derived state without a second read.
type Receipt struct {
	Contributor  models.Contributor
	AmountRaised decimal.Decimal
}

// RecordContribution creates a contributor record and increments the
// budget's AmountRaised as one atomic unit.
//
// Validation, not-found and conflict errors are returned immediately
// and never leave partial state behind. Transient storage errors are
// retried with exponential backoff before ErrStorage is returned.
func (s *Service) RecordContribution(ctx context.Context, input ContributionInput) (Receipt, error) {
	if err := input.validate(); err != nil {
		return Receipt{}, err
	}

	var receipt Receipt
	var err error

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		receipt, err = s.record(ctx, input)
		if err == nil {
			return receipt, nil
		}

		if !retryable(err) {
			return Receipt{}, classify(err)
		}

		if attempt >= maxAttempts {
			return Receipt{}, fmt.Errorf("%w: %s", ErrStorage, err)
		}

		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// record executes one attempt of the transactional unit of work.
func (s *Service) record(ctx context.Context, input ContributionInput) (Receipt, error) {
	var receipt Receipt

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		err := tx.First(&budget, input.BudgetID).Error
		if err != nil {
			return err
		}

		if budget.Status != models.BudgetStatusOpen {
			return ErrBudgetNotOpen
		}

		departmentID := input.DepartmentID
		if departmentID == uuid.Nil {
			departmentID = budget.DepartmentID
		} else if departmentID != budget.DepartmentID {
			return ErrDepartmentMismatch
		}

		contributor := models.Contributor{
			Name:          input.Name,
			Amount:        input.Amount,
			PaymentMethod: input.PaymentMethod,
			BudgetID:      budget.ID,
			DepartmentID:  departmentID,
			AnonymousFlag: input.AnonymousFlag,
			Notes:         input.Notes,
		}

		err = tx.Create(&contributor).Error
		if err != nil {
			return err
		}

		// The new total is computed in Go because sqlite evaluates
		// arithmetic on DECIMAL columns in floating point. Summing in
		// SQL would accumulate rounding errors in amount_raised.
		newTotal := budget.AmountRaised.Add(input.Amount)
		if newTotal.GreaterThan(MaxAmount) {
			return ErrAmountRaisedOverflow
		}

		// The WHERE clause re-checks the status and the total read
		// above, so a budget that was closed or incremented by a
		// concurrent transaction in the meantime is never overwritten.
		// A lost race surfaces as RowsAffected == 0 and feeds the
		// retry loop.
		//
		// UpdateColumn skips the model hooks, the ledger is the only
		// writer that may touch amount_raised.
		res := tx.Model(&models.Budget{}).
			Where("id = ? AND status = ? AND amount_raised = ?", budget.ID, models.BudgetStatusOpen, budget.AmountRaised).
			UpdateColumn("amount_raised", newTotal)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			err = tx.First(&budget, budget.ID).Error
			if err != nil {
				return err
			}

			if budget.Status != models.BudgetStatusOpen {
				return ErrBudgetNotOpen
			}

			return errConcurrentUpdate
		}

		receipt = Receipt{
			Contributor:  contributor,
			AmountRaised: newTotal,
		}

		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	return receipt, nil
}

// classify passes domain errors through unchanged and wraps everything
// else in ErrStorage. Errors from a failed transaction start do not run
// through the database callbacks, without this they would surface as
// client errors.
func classify(err error) error {
	for _, known := range []error{
		ErrBudgetNotOpen,
		ErrDepartmentMismatch,
		ErrAmountRaisedOverflow,
		models.ErrResourceNotFound,
		models.ErrGeneral,
		models.ErrContributorAmountNotPositive,
		models.ErrContributorPaymentMethod,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %s", ErrStorage, err)
}

// retryable reports whether the error is a transient storage error.
// Validation, not-found and conflict errors are final.
func retryable(err error) bool {
	if errors.Is(err, errConcurrentUpdate) {
		return true
	}

	msg := err.Error()

	for _, s := range []string{
		"database is locked",
		"database table is locked",
		"SQLITE_BUSY",
		"SQLSTATE 40001", // serialization failure
		"SQLSTATE 40P01", // deadlock detected
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}

	return false
}
