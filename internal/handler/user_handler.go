package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"jiffyapply/internal/errors"
	"jiffyapply/internal/resume"
	"jiffyapply/internal/service"
)

// UserHandler serves the authenticated user's profile and resume.
type UserHandler struct {
	users   service.UserService
	resumes service.ResumeService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService, resumes service.ResumeService) *UserHandler {
	return &UserHandler{users: users, resumes: resumes}
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// AcknowledgeFees godoc
// @Summary Acknowledge the subscription fee terms
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/acknowledge-fees [post]
func (h *UserHandler) AcknowledgeFees(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	if err := h.users.AcknowledgeFees(c.Request().Context(), claims.UserID); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":          "Fees acknowledged",
		"acknowledgedFees": true,
	})
}

// UploadResume godoc
// @Summary Upload and parse a resume
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param resume formData file true "PDF or DOCX, at most 5MB"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /user/resume [post]
func (h *UserHandler) UploadResume(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("resume")
	if err != nil {
		return badRequest("no file uploaded", "NO_FILE")
	}
	if err := resume.CheckSize(fh.Size); err != nil {
		return domainError(err)
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest("could not read upload", "NO_FILE")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, resume.MaxUploadSize+1))
	if err != nil {
		return domainError(errors.New(errors.ErrUnsupportedMedia, "could not read upload"))
	}

	stored, err := h.resumes.Upload(c.Request().Context(), claims.UserID, service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Data:        data,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Resume uploaded and parsed successfully",
		"resume":  stored.Parsed,
	})
}
