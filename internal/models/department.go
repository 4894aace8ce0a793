package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Department represents a ministry department of the church.
//
// A department is the highest level of organization, budgets and
// contributions reference it directly or transitively.
type Department struct {
	DefaultModel
	Name string `gorm:"uniqueIndex"`
	Note string
}

var ErrDepartmentNameNotUnique = errors.New("the department name must be unique")

func (d *Department) BeforeSave(_ *gorm.DB) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Note = strings.TrimSpace(d.Note)

	return nil
}
