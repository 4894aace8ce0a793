package ledger_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/palacehub/backend/internal/ledger"
	"github.com/palacehub/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestRecordContribution() {
	budget := suite.createTestBudget(models.Budget{Name: "Building Fund"})

	receipt, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Jane Wanjiku",
		Amount:        decimal.NewFromFloat(200),
		PaymentMethod: models.PaymentMethodMpesa,
		BudgetID:      budget.ID,
	})
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), receipt.AmountRaised.Equal(decimal.NewFromFloat(200)), "AmountRaised is %s, should be 200", receipt.AmountRaised)

	receipt, err = suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "John Otieno",
		Amount:        decimal.NewFromFloat(150),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), receipt.AmountRaised.Equal(decimal.NewFromFloat(350)), "AmountRaised is %s, should be 350", receipt.AmountRaised)

	// The budget total matches the sum of the stored contributors
	err = models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), budget.AmountRaised.Equal(decimal.NewFromFloat(350)))

	sum, err := models.ContributionSum(models.DB, budget.ID)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), sum.Equal(budget.AmountRaised))
}

func (suite *TestSuiteStandard) TestRecordContributionSmallestAmount() {
	budget := suite.createTestBudget(models.Budget{})

	receipt, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(0.01),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), receipt.AmountRaised.Equal(decimal.NewFromFloat(0.01)))
}

func (suite *TestSuiteStandard) TestRecordContributionAmountNotPositive() {
	budget := suite.createTestBudget(models.Budget{})

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromFloat(-5)} {
		_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
			Name:          "Test",
			Amount:        amount,
			PaymentMethod: models.PaymentMethodCash,
			BudgetID:      budget.ID,
		})
		suite.Assert().ErrorIs(err, models.ErrContributorAmountNotPositive, "Contribution with amount %s was recorded", amount)
	}

	// No partial state was left behind
	var count int64
	_ = models.DB.Model(&models.Contributor{}).Count(&count).Error
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestRecordContributionAmountTooLarge() {
	budget := suite.createTestBudget(models.Budget{})

	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        ledger.MaxAmount.Add(decimal.NewFromFloat(1)),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	suite.Assert().ErrorIs(err, ledger.ErrAmountTooLarge)
}

func (suite *TestSuiteStandard) TestRecordContributionNameRequired() {
	budget := suite.createTestBudget(models.Budget{})

	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "   ",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	suite.Assert().ErrorIs(err, ledger.ErrNameRequired)
}

func (suite *TestSuiteStandard) TestRecordContributionAnonymousDefaultName() {
	budget := suite.createTestBudget(models.Budget{})

	receipt, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
		AnonymousFlag: true,
	})
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), models.AnonymousName, receipt.Contributor.Name)
}

func (suite *TestSuiteStandard) TestRecordContributionNameTooLong() {
	budget := suite.createTestBudget(models.Budget{})

	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          strings.Repeat("a", 201),
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	suite.Assert().ErrorIs(err, ledger.ErrNameTooLong)
}

func (suite *TestSuiteStandard) TestRecordContributionNotesTooLong() {
	budget := suite.createTestBudget(models.Budget{})

	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Notes:         strings.Repeat("a", 1001),
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	suite.Assert().ErrorIs(err, ledger.ErrNotesTooLong)
}

func (suite *TestSuiteStandard) TestRecordContributionPaymentMethodInvalid() {
	budget := suite.createTestBudget(models.Budget{})

	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: "PAYPAL",
		BudgetID:      budget.ID,
	})
	suite.Assert().ErrorIs(err, models.ErrContributorPaymentMethod)
}

func (suite *TestSuiteStandard) TestRecordContributionBudgetIDMissing() {
	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
	})
	suite.Assert().ErrorIs(err, ledger.ErrBudgetIDMissing)
}

func (suite *TestSuiteStandard) TestRecordContributionBudgetNotFound() {
	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      uuid.New(),
	})
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestRecordContributionBudgetNotOpen() {
	for _, status := range []models.BudgetStatus{models.BudgetStatusClosed, models.BudgetStatusCompleted} {
		budget := suite.createTestBudget(models.Budget{Status: status})

		_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
			Name:          "Test",
			Amount:        decimal.NewFromFloat(10),
			PaymentMethod: models.PaymentMethodCash,
			BudgetID:      budget.ID,
		})
		suite.Assert().ErrorIs(err, ledger.ErrBudgetNotOpen, "Contribution against %s budget was recorded", status)

		// Neither a contributor row nor an increment may exist
		var count int64
		_ = models.DB.Model(&models.Contributor{}).Where("budget_id = ?", budget.ID).Count(&count).Error
		assert.Equal(suite.T(), int64(0), count)

		err = models.DB.First(&budget, budget.ID).Error
		assert.Nil(suite.T(), err)
		assert.True(suite.T(), budget.AmountRaised.IsZero(), "AmountRaised is %s, should be 0", budget.AmountRaised)
	}
}

func (suite *TestSuiteStandard) TestRecordContributionDepartmentMismatch() {
	budget := suite.createTestBudget(models.Budget{})
	other := suite.createTestDepartment(models.Department{})

	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
		DepartmentID:  other.ID,
	})
	suite.Assert().ErrorIs(err, ledger.ErrDepartmentMismatch)
}

func (suite *TestSuiteStandard) TestRecordContributionInheritsDepartment() {
	budget := suite.createTestBudget(models.Budget{})

	receipt, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), budget.DepartmentID, receipt.Contributor.DepartmentID)
}

func (suite *TestSuiteStandard) TestRecordContributionDBFail() {
	budget := suite.createTestBudget(models.Budget{})
	suite.CloseDB()

	_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	suite.Assert().ErrorIs(err, ledger.ErrStorage)
}

// TestRecordContributionConcurrent verifies that concurrent
// contributions against the same budget do not lose updates.
func (suite *TestSuiteStandard) TestRecordContributionConcurrent() {
	budget := suite.createTestBudget(models.Budget{})

	const workers = 10
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range perWorker {
				_, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
					Name:          "Test",
					Amount:        decimal.NewFromFloat(10),
					PaymentMethod: models.PaymentMethodCash,
					BudgetID:      budget.ID,
				})
				if err != nil {
					errs <- err
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.Fail(suite.T(), "Concurrent contribution failed", err.Error())
	}

	err := models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), budget.AmountRaised.Equal(decimal.NewFromFloat(workers*perWorker*10)), "AmountRaised is %s, should be %d", budget.AmountRaised, workers*perWorker*10)

	var count int64
	err = models.DB.Model(&models.Contributor{}).Where("budget_id = ?", budget.ID).Count(&count).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), int64(workers*perWorker), count)
}

func (suite *TestSuiteStandard) TestRecordContributionContextCanceled() {
	budget := suite.createTestBudget(models.Budget{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.service.RecordContribution(ctx, ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	suite.Assert().NotNil(err)
}

// Ten contributions of 0.1 have to add up to exactly 1. Arithmetic on
// the stored totals runs in Go, sqlite would evaluate it in floating
// point.
func (suite *TestSuiteStandard) TestRecordContributionExactTotal() {
	budget := suite.createTestBudget(models.Budget{})

	var receipt ledger.Receipt
	var err error
	for range 10 {
		receipt, err = suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
			Name:          "Test",
			Amount:        decimal.NewFromFloat(0.1),
			PaymentMethod: models.PaymentMethodCash,
			BudgetID:      budget.ID,
		})
		assert.Nil(suite.T(), err)
	}

	assert.True(suite.T(), receipt.AmountRaised.Equal(decimal.NewFromInt(1)), "AmountRaised is %s, should be 1", receipt.AmountRaised)

	err = models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), budget.AmountRaised.Equal(decimal.NewFromInt(1)), "stored AmountRaised is %s, should be 1", budget.AmountRaised)

	report, err := suite.service.VerifyBudgetIntegrity(context.Background(), budget.ID)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), report.Match, "stored total drifted from the contribution sum by %s", report.Delta)
}

func (suite *TestSuiteStandard) TestRecordContributionOverflowRollsBack() {
	budget := suite.createTestBudget(models.Budget{})

	// A contribution raising the total to exactly the maximum is legal
	receipt, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        ledger.MaxAmount,
		PaymentMethod: models.PaymentMethodBank,
		BudgetID:      budget.ID,
	})
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), receipt.AmountRaised.Equal(ledger.MaxAmount))

	err = models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	raisedBefore := budget.AmountRaised

	_, err = suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(1),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	assert.ErrorIs(suite.T(), err, ledger.ErrAmountRaisedOverflow)

	// The contributor insert is rolled back together with the refused
	// increment
	var count int64
	err = models.DB.Model(&models.Contributor{}).Where("budget_id = ?", budget.ID).Count(&count).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), int64(1), count)

	err = models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), budget.AmountRaised.Equal(raisedBefore))
}

func (suite *TestSuiteStandard) TestRecordContributionBudgetClosedMidTransaction() {
	budget := suite.createTestBudget(models.Budget{})

	// Close the budget after the transaction has read it as open, but
	// before the guarded increment runs. The callback executes on the
	// transaction connection, so the closed status is visible to the
	// increment's WHERE clause.
	injected := false
	err := models.DB.Callback().Update().Before("gorm:update").Register("ledger_test_close_budget", func(tx *gorm.DB) {
		if injected {
			return
		}
		injected = true

		err := tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.Budget{}).
			Where("id = ?", budget.ID).
			UpdateColumn("status", models.BudgetStatusClosed).Error
		if err != nil {
			_ = tx.AddError(err)
		}
	})
	assert.Nil(suite.T(), err)
	defer func() {
		_ = models.DB.Callback().Update().Remove("ledger_test_close_budget")
	}()

	_, err = suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      budget.ID,
	})
	assert.ErrorIs(suite.T(), err, ledger.ErrBudgetNotOpen)

	var count int64
	err = models.DB.Model(&models.Contributor{}).Where("budget_id = ?", budget.ID).Count(&count).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestRecordContributionRetriesTransientError() {
	budget := suite.createTestBudget(models.Budget{})

	// Fail the first increment with a busy error. The retry has to
	// record exactly one contribution and one increment.
	injected := false
	err := models.DB.Callback().Update().Before("gorm:update").Register("ledger_test_inject_busy", func(tx *gorm.DB) {
		if injected {
			return
		}
		injected = true

		_ = tx.AddError(errors.New("database is locked (5) (SQLITE_BUSY)"))
	})
	assert.Nil(suite.T(), err)
	defer func() {
		_ = models.DB.Callback().Update().Remove("ledger_test_inject_busy")
	}()

	receipt, err := suite.service.RecordContribution(context.Background(), ledger.ContributionInput{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodMpesa,
		BudgetID:      budget.ID,
	})
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), receipt.AmountRaised.Equal(decimal.NewFromFloat(10)))

	var count int64
	err = models.DB.Model(&models.Contributor{}).Where("budget_id = ?", budget.ID).Count(&count).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), int64(1), count)

	err = models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), budget.AmountRaised.Equal(decimal.NewFromFloat(10)))
}
