package models_test

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/palacehub/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestBudgetTrimWhitespace() {
	name := "  Building Fund "
	note := " Renovation of the main sanctuary\t"

	budget := suite.createTestBudget(models.Budget{
		Name: name,
		Note: note,
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), budget.Name)
	assert.Equal(suite.T(), strings.TrimSpace(note), budget.Note)
}

func (suite *TestSuiteStandard) TestBudgetDefaultStatus() {
	budget := suite.createTestBudget(models.Budget{})

	assert.Equal(suite.T(), models.BudgetStatusOpen, budget.Status, "Budget status does not default to OPEN")
}

func (suite *TestSuiteStandard) TestBudgetInvalidStatus() {
	budget := models.Budget{
		DepartmentID: suite.createTestDepartment(models.Department{}).ID,
		TargetAmount: decimal.NewFromFloat(100),
		Status:       "ARCHIVED",
	}

	err := models.DB.Create(&budget).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetStatusInvalid)
}

func (suite *TestSuiteStandard) TestBudgetTargetAmountPositive() {
	department := suite.createTestDepartment(models.Department{})

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromFloat(-10)} {
		budget := models.Budget{
			DepartmentID: department.ID,
			TargetAmount: amount,
		}

		err := models.DB.Create(&budget).Error
		suite.Assert().ErrorIs(err, models.ErrBudgetTargetNotPositive, "Budget with target amount %s was created", amount)
	}
}

func (suite *TestSuiteStandard) TestBudgetDepartmentMustExist() {
	budget := models.Budget{
		DepartmentID: uuid.New(),
		TargetAmount: decimal.NewFromFloat(100),
	}

	err := models.DB.Create(&budget).Error
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestBudgetDepartmentImmutable() {
	budget := suite.createTestBudget(models.Budget{})
	other := suite.createTestDepartment(models.Department{})

	err := models.DB.Model(&budget).Select("DepartmentID").Updates(models.Budget{DepartmentID: other.ID}).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetDepartmentImmutable)
}

func (suite *TestSuiteStandard) TestBudgetUpdate() {
	budget := suite.createTestBudget(models.Budget{
		Name:     "Harvest Sunday",
		Deadline: time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
	})

	err := models.DB.Model(&budget).Select("Status").Updates(models.Budget{Status: models.BudgetStatusClosed}).Error
	assert.Nil(suite.T(), err)

	err = models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), models.BudgetStatusClosed, budget.Status)
}

func (suite *TestSuiteStandard) TestBudgetLinkedEvent() {
	eventID := uuid.New()
	budget := suite.createTestBudget(models.Budget{LinkedEventID: &eventID})

	err := models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), eventID, *budget.LinkedEventID)
}

func (suite *TestSuiteStandard) TestBudgetAmountRaisedDefaultsToZero() {
	budget := suite.createTestBudget(models.Budget{})

	err := models.DB.First(&budget, budget.ID).Error
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), budget.AmountRaised.IsZero(), "AmountRaised is %s, should be 0", budget.AmountRaised)
}
