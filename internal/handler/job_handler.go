package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"jiffyapply/internal/jobsearch"
	"jiffyapply/internal/model"
)

// JobSearcher finds postings on the external job boards.
type JobSearcher interface {
	Search(ctx context.Context, q jobsearch.Query) (*jobsearch.Result, error)
}

// JobHandler proxies job board searches.
type JobHandler struct {
	searcher JobSearcher
}

// NewJobHandler creates a new job handler.
func NewJobHandler(searcher JobSearcher) *JobHandler {
	return &JobHandler{searcher: searcher}
}

// JobSearchParams are the query parameters of a job search.
type JobSearchParams struct {
	What   string `query:"what"`
	Where  string `query:"where"`
	Page   int    `query:"page" validate:"omitempty,min=1,max=50"`
	Source string `query:"source" validate:"omitempty,oneof=Adzuna USAJOBS"`
}

// Search godoc
// @Summary Search Adzuna and USAJOBS
// @Description Boards without configured keys are skipped; boards that fail are listed in failedSources.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param what query string false "Keywords"
// @Param where query string false "Location"
// @Param page query int false "Page, from 1"
// @Param source query string false "Adzuna or USAJOBS"
// @Success 200 {object} jobsearch.Result
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /jobs/search [get]
func (h *JobHandler) Search(c echo.Context) error {
	if _, err := claimsFrom(c); err != nil {
		return err
	}

	var params JobSearchParams
	if err := bindAndValidate(c, &params); err != nil {
		return err
	}

	res, err := h.searcher.Search(c.Request().Context(), jobsearch.Query{
		What:   params.What,
		Where:  params.Where,
		Page:   params.Page,
		Source: model.JobSource(params.Source),
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, res)
}
