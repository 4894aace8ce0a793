package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/palacehub/backend/internal/models"
)

type DepartmentEditable struct {
	Name string `json:"name" example:"Youth" default:""`                       // Name of the department
	Note string `json:"note" example:"All programs for ages 13-18" default:""` // A note
}

// model returns the database resource for the API representation of the editable fields
func (editable DepartmentEditable) model() models.Department {
	return models.Department{
		Name: editable.Name,
		Note: editable.Note,
	}
}

type DepartmentLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/departments/d430d7c3-d14c-4712-9336-ee56965a6673"`           // The department itself
	Budgets string `json:"budgets" example:"https://example.com/api/v1/budgets?department=d430d7c3-d14c-4712-9336-ee56965a6673"` // Budgets for this department
}

// Department is the API representation of a department.
type Department struct {
	models.DefaultModel
	DepartmentEditable
	Links DepartmentLinks `json:"links"`
}

// newDepartment returns the API representation of the resource
func newDepartment(c *gin.Context, model models.Department) Department {
	url := c.GetString(string(models.DBContextURL))

	return Department{
		DefaultModel: model.DefaultModel,
		DepartmentEditable: DepartmentEditable{
			Name: model.Name,
			Note: model.Note,
		},
		Links: DepartmentLinks{
			Self:    fmt.Sprintf("%s/v1/departments/%s", url, model.ID),
			Budgets: fmt.Sprintf("%s/v1/budgets?department=%s", url, model.ID),
		},
	}
}

type DepartmentResponse struct {
	Data  *Department `json:"data"`                                                          // The department data, if the request was successful
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type DepartmentListResponse struct {
	Data       []Department `json:"data"`                                                          // List of departments
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type DepartmentQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // Name of the department
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first department returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of departments to return. Defaults to 50.
}
