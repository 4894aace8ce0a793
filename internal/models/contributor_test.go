package models_test

import (
	"strings"

	"github.com/google/uuid"
	"github.com/palacehub/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestContributorTrimWhitespace() {
	name := " Jane Wanjiku  "
	notes := "\tPledge from the harvest service "

	contributor := suite.createTestContributor(models.Contributor{
		Name:  name,
		Notes: notes,
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), contributor.Name)
	assert.Equal(suite.T(), strings.TrimSpace(notes), contributor.Notes)
}

func (suite *TestSuiteStandard) TestContributorAnonymousDefaultName() {
	contributor := suite.createTestContributor(models.Contributor{
		AnonymousFlag: true,
	})

	assert.Equal(suite.T(), models.AnonymousName, contributor.Name, "Anonymous contribution without pseudonym did not get the default name")
}

func (suite *TestSuiteStandard) TestContributorAnonymousPseudonymKept() {
	contributor := suite.createTestContributor(models.Contributor{
		Name:          "A friend of the choir",
		AnonymousFlag: true,
	})

	assert.Equal(suite.T(), "A friend of the choir", contributor.Name)
}

func (suite *TestSuiteStandard) TestContributorAmountPositive() {
	budget := suite.createTestBudget(models.Budget{})

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromFloat(-0.01)} {
		contributor := models.Contributor{
			Name:          "Test",
			Amount:        amount,
			PaymentMethod: models.PaymentMethodCash,
			BudgetID:      budget.ID,
			DepartmentID:  budget.DepartmentID,
		}

		err := models.DB.Create(&contributor).Error
		suite.Assert().ErrorIs(err, models.ErrContributorAmountNotPositive, "Contributor with amount %s was created", amount)
	}
}

func (suite *TestSuiteStandard) TestContributorPaymentMethodValidated() {
	budget := suite.createTestBudget(models.Budget{})

	contributor := models.Contributor{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: "PAYPAL",
		BudgetID:      budget.ID,
		DepartmentID:  budget.DepartmentID,
	}

	err := models.DB.Create(&contributor).Error
	suite.Assert().ErrorIs(err, models.ErrContributorPaymentMethod)
}

func (suite *TestSuiteStandard) TestContributorBudgetMustExist() {
	contributor := models.Contributor{
		Name:          "Test",
		Amount:        decimal.NewFromFloat(10),
		PaymentMethod: models.PaymentMethodCash,
		BudgetID:      uuid.New(),
	}

	err := models.DB.Create(&contributor).Error
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestContributorImmutable() {
	contributor := suite.createTestContributor(models.Contributor{Name: "Test"})

	err := models.DB.Model(&contributor).Select("Name").Updates(models.Contributor{Name: "Changed"}).Error
	suite.Assert().ErrorIs(err, models.ErrContributorImmutable)
}

func (suite *TestSuiteStandard) TestContributionSum() {
	budget := suite.createTestBudget(models.Budget{})

	for _, amount := range []float64{200, 150, 0.01} {
		_ = suite.createTestContributor(models.Contributor{
			Amount:       decimal.NewFromFloat(amount),
			BudgetID:     budget.ID,
			DepartmentID: budget.DepartmentID,
		})
	}

	sum, err := models.ContributionSum(models.DB, budget.ID)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), sum.Equal(decimal.NewFromFloat(350.01)), "Contribution sum is %s, should be 350.01", sum)
}

func (suite *TestSuiteStandard) TestContributionSumNoContributions() {
	budget := suite.createTestBudget(models.Budget{})

	sum, err := models.ContributionSum(models.DB, budget.ID)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), sum.IsZero(), "Contribution sum is %s, should be 0", sum)
}

func (suite *TestSuiteStandard) TestContributionSumDBFail() {
	budget := suite.createTestBudget(models.Budget{})
	suite.CloseDB()

	_, err := models.ContributionSum(models.DB, budget.ID)
	suite.Assert().NotNil(err)
}
