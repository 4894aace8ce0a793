package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/palacehub/backend/internal/httputil"
	"github.com/palacehub/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterContributorRoutes registers the routes for contributors with
// the RouterGroup that is passed.
func (co Controller) RegisterContributorRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsContributors)
		r.GET("", co.GetContributors)
		r.POST("", co.CreateContributor)
	}

	// Contributor with ID. Contribution records are append-only, there
	// are no PATCH or DELETE routes.
	{
		r.OPTIONS("/:id", co.OptionsContributorDetail)
		r.GET("/:id", co.GetContributor)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Contributors
// @Success		204
// @Router			/v1/contributors [options]
func (co Controller) OptionsContributors(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Contributors
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/contributors/{id} [options]
func (co Controller) OptionsContributorDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var contributor models.Contributor
	err = models.DB.First(&contributor, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Record contribution
// @Description	Records a contribution against a budget. The contribution record and the budget total are written in one transaction, the response carries the budget total after the increment.
// @Tags			Contributors
// @Accept			json
// @Produce		json
// @Success		201			{object}	RecordResponse
// @Failure		400			{object}	RecordResponse
// @Failure		404			{object}	RecordResponse
// @Failure		409			{object}	RecordResponse
// @Failure		500			{object}	RecordResponse
// @Param			contributor	body		ContributorEditable	true	"Contributor"
// @Router			/v1/contributors [post]
func (co Controller) CreateContributor(c *gin.Context) {
	var editable ContributorEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RecordResponse{Error: &e})
		return
	}

	receipt, err := co.Ledger.RecordContribution(c.Request.Context(), editable.input())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RecordResponse{Error: &e})
		return
	}

	data := Record{
		Contributor:  newContributor(c, receipt.Contributor),
		AmountRaised: receipt.AmountRaised,
	}
	c.JSON(http.StatusCreated, RecordResponse{Data: &data})
}

// @Summary		Get contributors
// @Description	Returns a list of contribution records, newest first. This list must never be summed up by clients to display a budget total, the budget's amountRaised field is the authoritative value.
// @Tags			Contributors
// @Produce		json
// @Success		200	{object}	ContributorListResponse
// @Failure		400	{object}	ContributorListResponse
// @Failure		500	{object}	ContributorListResponse
// @Router			/v1/contributors [get]
// @Param			budget			query	string	false	"Filter by budget ID"
// @Param			department		query	string	false	"Filter by department ID"
// @Param			paymentMethod	query	string	false	"Filter by payment method"
// @Param			anonymous		query	bool	false	"Filter by anonymous flag"
// @Param			offset			query	uint	false	"The offset of the first Contributor returned. Defaults to 0."
// @Param			limit			query	int		false	"Maximum number of Contributors to return. Defaults to 50."
func (co Controller) GetContributors(c *gin.Context) {
	var filter ContributorQueryFilter
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ContributorListResponse{Error: &e})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("datetime(contributors.created_at) DESC").
		Where(filter.model(), queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 contributors and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var contributors []models.Contributor
	err := q.Find(&contributors).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ContributorListResponse{Error: &e})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ContributorListResponse{Error: &e})
		return
	}

	data := make([]Contributor, 0)
	for _, contributor := range contributors {
		data = append(data, newContributor(c, contributor))
	}

	c.JSON(http.StatusOK, ContributorListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get contributor
// @Description	Returns a specific contribution record
// @Tags			Contributors
// @Produce		json
// @Success		200	{object}	ContributorResponse
// @Failure		400	{object}	ContributorResponse
// @Failure		404	{object}	ContributorResponse
// @Failure		500	{object}	ContributorResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/contributors/{id} [get]
func (co Controller) GetContributor(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ContributorResponse{Error: &e})
		return
	}

	var contributor models.Contributor
	err = models.DB.First(&contributor, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ContributorResponse{Error: &e})
		return
	}

	data := newContributor(c, contributor)
	c.JSON(http.StatusOK, ContributorResponse{Data: &data})
}
