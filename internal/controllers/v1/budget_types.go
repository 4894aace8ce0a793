package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/palacehub/backend/internal/ledger"
	"github.com/palacehub/backend/internal/models"
	ph_uuid "github.com/palacehub/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

type BudgetEditable struct {
	Name string `json:"name" example:"Youth Camp 2026" default:""`     // Name of the budget
	Note string `json:"note" example:"Annual retreat fund" default:""` // A note

	// The maximum value is "999999999999.99999999", swagger unfortunately rounds this.
	TargetAmount decimal.Decimal `json:"targetAmount" example:"5000" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001"` // The fundraising target

	DepartmentID  uuid.UUID           `json:"departmentId" example:"fd81dc45-a3a2-468e-a6fa-b2618f30aa45"`  // ID of the owning department. Cannot be changed after creation.
	Status        models.BudgetStatus `json:"status" example:"OPEN" default:"OPEN"`                         // One of OPEN, CLOSED, COMPLETED
	Deadline      time.Time           `json:"deadline" example:"2026-06-30T00:00:00Z"`                      // Date the fundraising target should be reached by
	LinkedEventID *uuid.UUID          `json:"linkedEventId" example:"2649c965-7999-4873-ae16-89d5d5fa972e"` // Optional reference to an event
}

// model returns the database resource for the API representation of the editable fields
func (editable BudgetEditable) model() models.Budget {
	return models.Budget{
		Name:          editable.Name,
		Note:          editable.Note,
		TargetAmount:  editable.TargetAmount,
		DepartmentID:  editable.DepartmentID,
		Status:        editable.Status,
		Deadline:      editable.Deadline,
		LinkedEventID: editable.LinkedEventID,
	}
}

type BudgetLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/budgets/d430d7c3-d14c-4712-9336-ee56965a6673"`                     // The budget itself
	Contributors string `json:"contributors" example:"https://example.com/api/v1/contributors?budget=d430d7c3-d14c-4712-9336-ee56965a6673"` // Contributions to this budget
	Integrity    string `json:"integrity" example:"https://example.com/api/v1/budgets/d430d7c3-d14c-4712-9336-ee56965a6673/integrity"`      // Integrity check for this budget
}

// Budget is the API representation of a budget.
type Budget struct {
	models.DefaultModel
	BudgetEditable

	// AmountRaised is derived from the recorded contributions and can
	// not be written through the API.
	AmountRaised decimal.Decimal `json:"amountRaised" example:"350"`

	Links BudgetLinks `json:"links"`
}

// newBudget returns the API representation of the resource
func newBudget(c *gin.Context, model models.Budget) Budget {
	url := c.GetString(string(models.DBContextURL))

	return Budget{
		DefaultModel: model.DefaultModel,
		BudgetEditable: BudgetEditable{
			Name:          model.Name,
			Note:          model.Note,
			TargetAmount:  model.TargetAmount,
			DepartmentID:  model.DepartmentID,
			Status:        model.Status,
			Deadline:      model.Deadline,
			LinkedEventID: model.LinkedEventID,
		},
		AmountRaised: model.AmountRaised,
		Links: BudgetLinks{
			Self:         fmt.Sprintf("%s/v1/budgets/%s", url, model.ID),
			Contributors: fmt.Sprintf("%s/v1/contributors?budget=%s", url, model.ID),
			Integrity:    fmt.Sprintf("%s/v1/budgets/%s/integrity", url, model.ID),
		},
	}
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`                                                          // The budget data, if the request was successful
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BudgetListResponse struct {
	Data       []Budget    `json:"data"`                                                          // List of budgets
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type IntegrityResponse struct {
	Data  *ledger.IntegrityReport `json:"data"`                                                          // The integrity report
	Error *string                 `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BudgetQueryFilter struct {
	Name         string              `form:"name" filterField:"false"`   // Name of the budget
	DepartmentID ph_uuid.UUID        `form:"department"`                 // ID of the owning department
	Status       models.BudgetStatus `form:"status"`                     // Status of the budget
	Offset       uint                `form:"offset" filterField:"false"` // The offset of the first budget returned. Defaults to 0.
	Limit        int                 `form:"limit" filterField:"false"`  // Maximum number of budgets to return. Defaults to 50.
}

func (f BudgetQueryFilter) model() models.Budget {
	return models.Budget{
		DepartmentID: f.DepartmentID.UUID,
		Status:       f.Status,
	}
}
