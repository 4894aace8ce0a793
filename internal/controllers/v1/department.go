package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/palacehub/backend/internal/httputil"
	"github.com/palacehub/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterDepartmentRoutes registers the routes for departments with
// the RouterGroup that is passed.
func (co Controller) RegisterDepartmentRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsDepartments)
		r.GET("", co.GetDepartments)
		r.POST("", co.CreateDepartment)
	}

	// Department with ID
	{
		r.OPTIONS("/:id", co.OptionsDepartmentDetail)
		r.GET("/:id", co.GetDepartment)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Departments
// @Success		204
// @Router			/v1/departments [options]
func (co Controller) OptionsDepartments(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Departments
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/departments/{id} [options]
func (co Controller) OptionsDepartmentDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var department models.Department
	err = models.DB.First(&department, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Create department
// @Description	Creates a new department
// @Tags			Departments
// @Accept			json
// @Produce		json
// @Success		201			{object}	DepartmentResponse
// @Failure		400			{object}	DepartmentResponse
// @Failure		500			{object}	DepartmentResponse
// @Param			department	body		DepartmentEditable	true	"Department"
// @Router			/v1/departments [post]
func (co Controller) CreateDepartment(c *gin.Context) {
	var editable DepartmentEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepartmentResponse{Error: &e})
		return
	}

	department := editable.model()
	err = models.DB.Create(&department).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepartmentResponse{Error: &e})
		return
	}

	data := newDepartment(c, department)
	c.JSON(http.StatusCreated, DepartmentResponse{Data: &data})
}

// @Summary		Get departments
// @Description	Returns a list of departments
// @Tags			Departments
// @Produce		json
// @Success		200	{object}	DepartmentListResponse
// @Failure		400	{object}	DepartmentListResponse
// @Failure		500	{object}	DepartmentListResponse
// @Router			/v1/departments [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			offset	query	uint	false	"The offset of the first Department returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of Departments to return. Defaults to 50."
func (co Controller) GetDepartments(c *gin.Context) {
	var filter DepartmentQueryFilter
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, DepartmentListResponse{Error: &e})
		return
	}

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.Order("departments.name ASC")

	if filter.Name != "" {
		q = q.Where("departments.name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	} else if slices.Contains(setFields, "Name") {
		q = q.Where("departments.name = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 departments and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var departments []models.Department
	err := q.Find(&departments).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepartmentListResponse{Error: &e})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepartmentListResponse{Error: &e})
		return
	}

	data := make([]Department, 0)
	for _, department := range departments {
		data = append(data, newDepartment(c, department))
	}

	c.JSON(http.StatusOK, DepartmentListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get department
// @Description	Returns a specific department
// @Tags			Departments
// @Produce		json
// @Success		200	{object}	DepartmentResponse
// @Failure		400	{object}	DepartmentResponse
// @Failure		404	{object}	DepartmentResponse
// @Failure		500	{object}	DepartmentResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/departments/{id} [get]
func (co Controller) GetDepartment(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepartmentResponse{Error: &e})
		return
	}

	var department models.Department
	err = models.DB.First(&department, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DepartmentResponse{Error: &e})
		return
	}

	data := newDepartment(c, department)
	c.JSON(http.StatusOK, DepartmentResponse{Data: &data})
}
