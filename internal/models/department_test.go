package models_test

import (
	"strings"

	"github.com/palacehub/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestDepartmentTrimWhitespace() {
	name := " Youth Ministry \t"
	note := "  Also covers the teens choir "

	department := suite.createTestDepartment(models.Department{
		Name: name,
		Note: note,
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), department.Name)
	assert.Equal(suite.T(), strings.TrimSpace(note), department.Note)
}

func (suite *TestSuiteStandard) TestDepartmentNameUnique() {
	_ = suite.createTestDepartment(models.Department{Name: "Music"})

	department := models.Department{Name: "Music"}
	err := models.DB.Create(&department).Error

	suite.Assert().ErrorIs(err, models.ErrDepartmentNameNotUnique)
}

func (suite *TestSuiteStandard) TestDepartmentCreateDBFail() {
	suite.CloseDB()

	department := models.Department{Name: "Ushering"}
	err := models.DB.Create(&department).Error

	suite.Assert().ErrorIs(err, models.ErrGeneral)
}
