package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/palacehub/backend/internal/ledger"
	"github.com/palacehub/backend/internal/models"
	ph_uuid "github.com/palacehub/backend/internal/uuid"
	"github.com/shopspring/decimal"
)

type ContributorEditable struct {
	Name string `json:"name" example:"Jane Doe" default:""` // Display name of the contributor. Required unless the contribution is anonymous.

	// The maximum value is "999999999999.99999999", swagger unfortunately rounds this.
	Amount decimal.Decimal `json:"amount" example:"150" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001"` // The contributed amount

	PaymentMethod models.PaymentMethod `json:"paymentMethod" example:"CASH"`                                // One of CASH, MPESA, BANK, CHEQUE
	BudgetID      uuid.UUID            `json:"budgetId" example:"fd81dc45-a3a2-468e-a6fa-b2618f30aa45"`     // ID of the budget the contribution is recorded against
	DepartmentID  uuid.UUID            `json:"departmentId" example:"2649c965-7999-4873-ae16-89d5d5fa972e"` // Optional. Must match the department of the budget when set.
	AnonymousFlag bool                 `json:"anonymousFlag" example:"false" default:"false"`               // Whether the contributor wishes to stay anonymous
	Notes         string               `json:"notes" example:"Pledge from the harvest service" default:""`  // A note
}

// input returns the ledger input for the API representation of the editable fields
func (editable ContributorEditable) input() ledger.ContributionInput {
	return ledger.ContributionInput{
		Name:          editable.Name,
		Amount:        editable.Amount,
		PaymentMethod: editable.PaymentMethod,
		BudgetID:      editable.BudgetID,
		DepartmentID:  editable.DepartmentID,
		AnonymousFlag: editable.AnonymousFlag,
		Notes:         editable.Notes,
	}
}

type ContributorLinks struct {
	Self   string `json:"self" example:"https://example.com/api/v1/contributors/d430d7c3-d14c-4712-9336-ee56965a6673"` // The contributor record itself
	Budget string `json:"budget" example:"https://example.com/api/v1/budgets/fd81dc45-a3a2-468e-a6fa-b2618f30aa45"`    // The budget the contribution was recorded against
}

// Contributor is the API representation of a contribution record.
type Contributor struct {
	models.DefaultModel
	ContributorEditable
	Links ContributorLinks `json:"links"`
}

// newContributor returns the API representation of the resource.
//
// The name of anonymous contributions is redacted, display layers only
// ever see the placeholder.
func newContributor(c *gin.Context, model models.Contributor) Contributor {
	url := c.GetString(string(models.DBContextURL))

	name := model.Name
	if model.AnonymousFlag {
		name = models.AnonymousName
	}

	return Contributor{
		DefaultModel: model.DefaultModel,
		ContributorEditable: ContributorEditable{
			Name:          name,
			Amount:        model.Amount,
			PaymentMethod: model.PaymentMethod,
			BudgetID:      model.BudgetID,
			DepartmentID:  model.DepartmentID,
			AnonymousFlag: model.AnonymousFlag,
			Notes:         model.Notes,
		},
		Links: ContributorLinks{
			Self:   fmt.Sprintf("%s/v1/contributors/%s", url, model.ID),
			Budget: fmt.Sprintf("%s/v1/budgets/%s", url, model.BudgetID),
		},
	}
}

// Record is the result of a recorded contribution. It carries the
// budget total after the increment so that clients can refresh
// progress displays without a second request.
type Record struct {
	Contributor  Contributor     `json:"contributor"`                // The created contribution record
	AmountRaised decimal.Decimal `json:"amountRaised" example:"350"` // The budget total after this contribution
}

type RecordResponse struct {
	Data  *Record `json:"data"`                                                          // The recorded contribution, if the request was successful
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ContributorResponse struct {
	Data  *Contributor `json:"data"`                                                          // The contributor data, if the request was successful
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ContributorListResponse struct {
	Data       []Contributor `json:"data"`                                                          // List of contributors
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type ContributorQueryFilter struct {
	BudgetID      ph_uuid.UUID         `form:"budget"`                     // ID of the budget
	DepartmentID  ph_uuid.UUID         `form:"department"`                 // ID of the department
	PaymentMethod models.PaymentMethod `form:"paymentMethod"`              // Payment method of the contribution
	AnonymousFlag bool                 `form:"anonymous"`                  // Whether the contribution is anonymous
	Offset        uint                 `form:"offset" filterField:"false"` // The offset of the first contributor returned. Defaults to 0.
	Limit         int                  `form:"limit" filterField:"false"`  // Maximum number of contributors to return. Defaults to 50.
}

func (f ContributorQueryFilter) model() models.Contributor {
	return models.Contributor{
		BudgetID:      f.BudgetID.UUID,
		DepartmentID:  f.DepartmentID.UUID,
		PaymentMethod: f.PaymentMethod,
		AnonymousFlag: f.AnonymousFlag,
	}
}
