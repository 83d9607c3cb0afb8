package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"jiffyapply/internal/errors"
	"jiffyapply/internal/model"
	"jiffyapply/internal/service"
)

// ApplicationHandler handles application record endpoints.
type ApplicationHandler struct {
	applications service.ApplicationService
}

// NewApplicationHandler creates a new application handler.
func NewApplicationHandler(applications service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// NullableDate is a Date that tells an explicit null apart from an omitted field.
type NullableDate struct {
	Date
	Set bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *NullableDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	return d.Date.UnmarshalJSON(b)
}

// ApplicationRequest is one application to log.
type ApplicationRequest struct {
	JobID             string `json:"jobId" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Company           string `json:"company" validate:"required"`
	Location          string `json:"location"`
	Salary            string `json:"salary"`
	ConsiderationDate *Date  `json:"considerationDate" swaggertype:"string" format:"date-time"`
	HiringManager     string `json:"hiringManager"`
	ContactEmail      string `json:"contactEmail"`
	ContactPhone      string `json:"contactPhone"`
	Status            string `json:"status" enums:"Applied,Under Review,Interview Scheduled,Rejected,Offer"`
	Source            string `json:"source" validate:"required,oneof=Adzuna USAJOBS"`
	Notes             string `json:"notes"`
}

func (r ApplicationRequest) input() service.ApplicationInput {
	return service.ApplicationInput{
		JobID:             r.JobID,
		Title:             r.Title,
		Company:           r.Company,
		Location:          r.Location,
		Salary:            r.Salary,
		ConsiderationDate: r.ConsiderationDate.ptr(),
		HiringManager:     r.HiringManager,
		ContactEmail:      r.ContactEmail,
		ContactPhone:      r.ContactPhone,
		Status:            model.ApplicationStatus(r.Status),
		Source:            model.JobSource(r.Source),
		Notes:             r.Notes,
	}
}

// BulkApplicationRequest carries up to 100 applications.
type BulkApplicationRequest struct {
	Applications []ApplicationRequest `json:"applications" validate:"required,min=1,max=100,dive"`
}

// UpdateApplicationRequest holds the mutable fields. Omitted fields are left
// unchanged; a null or empty considerationDate clears it.
type UpdateApplicationRequest struct {
	Title             *string      `json:"title"`
	Company           *string      `json:"company"`
	Location          *string      `json:"location"`
	Salary            *string      `json:"salary"`
	Status            *string      `json:"status" enums:"Applied,Under Review,Interview Scheduled,Rejected,Offer"`
	ConsiderationDate NullableDate `json:"considerationDate" swaggertype:"string" format:"date-time"`
	HiringManager     *string      `json:"hiringManager"`
	ContactEmail      *string      `json:"contactEmail"`
	ContactPhone      *string      `json:"contactPhone"`
	Notes             *string      `json:"notes"`
}

func (r UpdateApplicationRequest) patch() service.ApplicationPatch {
	p := service.ApplicationPatch{
		Title:             r.Title,
		Company:           r.Company,
		Location:          r.Location,
		Salary:            r.Salary,
		HiringManager:     r.HiringManager,
		ContactEmail:      r.ContactEmail,
		ContactPhone:      r.ContactPhone,
		Notes:             r.Notes,
	}
	if r.ConsiderationDate.Set {
		p.ConsiderationDate = r.ConsiderationDate.ptr()
		p.ClearConsiderationDate = p.ConsiderationDate == nil
	}
	if r.Status != nil {
		status := model.ApplicationStatus(*r.Status)
		p.Status = &status
	}
	return p
}

// CreateApplicationResponse reports a single creation.
type CreateApplicationResponse struct {
	Message                   string             `json:"message"`
	Application               *model.Application `json:"application"`
	FreeApplicationsRemaining int                `json:"freeApplicationsRemaining"`
}

// BulkApplicationResponse reports a bulk creation.
type BulkApplicationResponse struct {
	Message                   string              `json:"message"`
	Applications              []model.Application `json:"applications"`
	FreeApplicationsRemaining int                 `json:"freeApplicationsRemaining"`
	RequiresSubscription      bool                `json:"requiresSubscription"`
}

// List godoc
// @Summary List the current user's applications
// @Description Newest first by applied date.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Application
// @Failure 401 {object} errors.ErrorResponse
// @Router /applications [get]
func (h *ApplicationHandler) List(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	apps, err := h.applications.List(c.Request().Context(), claims.UserID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, apps)
}

// Create godoc
// @Summary Log one application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ApplicationRequest true "Application"
// @Success 201 {object} CreateApplicationResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse "No applications remaining; requiresSubscription is true"
// @Router /applications [post]
func (h *ApplicationHandler) Create(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	var req ApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.applications.Create(c.Request().Context(), claims.UserID, req.input())
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, CreateApplicationResponse{
		Message:                   "Application created successfully",
		Application:               res.Application,
		FreeApplicationsRemaining: res.FreeApplicationsRemaining,
	})
}

// CreateBulk godoc
// @Summary Log many applications
// @Description Creates as many of the applications as the free quota covers, in request order.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkApplicationRequest true "Applications"
// @Success 201 {object} BulkApplicationResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse "No applications remaining; requiresSubscription is true"
// @Router /applications/bulk [post]
func (h *ApplicationHandler) CreateBulk(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	var req BulkApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	inputs := make([]service.ApplicationInput, 0, len(req.Applications))
	for _, item := range req.Applications {
		inputs = append(inputs, item.input())
	}

	res, err := h.applications.CreateBulk(c.Request().Context(), claims.UserID, inputs)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, BulkApplicationResponse{
		Message:                   fmt.Sprintf("%d applications created successfully", len(res.Applications)),
		Applications:              res.Applications,
		FreeApplicationsRemaining: res.FreeApplicationsRemaining,
		RequiresSubscription:      res.RequiresSubscription,
	})
}

// Update godoc
// @Summary Update an application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body UpdateApplicationRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /applications/{id} [patch]
func (h *ApplicationHandler) Update(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainError(errors.ErrApplicationNotFound)
	}

	var req UpdateApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.applications.Update(c.Request().Context(), claims.UserID, id, req.patch())
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Application updated successfully",
		"application": app,
	})
}

// Delete godoc
// @Summary Delete an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainError(errors.ErrApplicationNotFound)
	}

	if err := h.applications.Delete(c.Request().Context(), claims.UserID, id); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Application deleted successfully",
	})
}
