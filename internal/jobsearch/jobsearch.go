// Package jobsearch proxies the external job boards so their keys stay on the server.
package jobsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"jiffyapply/internal/model"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultResultsPerPage = 20
	salaryNotSpecified    = "Not specified"
)

// Query is a job search request.
type Query struct {
	What  string
	Where string
	Page  int
	// Source restricts the search to one board. Empty means all configured boards.
	Source model.JobSource
}

// Job is a posting normalised across boards.
type Job struct {
	JobID    string          `json:"jobId"`
	Title    string          `json:"title"`
	Company  string          `json:"company"`
	Location string          `json:"location"`
	Salary   string          `json:"salary"`
	URL      string          `json:"url"`
	Category string          `json:"category,omitempty"`
	PostedAt string          `json:"postedAt,omitempty"`
	Source   model.JobSource `json:"source"`
	// SalaryMin is the advertised minimum, zero when the board gives none.
	SalaryMin decimal.Decimal `json:"-"`
}

// Source is one job board.
type Source interface {
	Name() model.JobSource
	// Enabled reports whether the board has credentials configured.
	Enabled() bool
	Search(ctx context.Context, q Query) ([]Job, error)
}

// FormatSalary renders a salary range as "$<min/1000>K - $<max/1000>K",
// rounding to whole thousands. A missing minimum means "Not specified".
func FormatSalary(minimum, maximum decimal.Decimal) string {
	if !minimum.IsPositive() {
		return salaryNotSpecified
	}
	if !maximum.IsPositive() {
		maximum = minimum
	}
	thousand := decimal.NewFromInt(1000)
	return fmt.Sprintf("$%sK - $%sK",
		minimum.Div(thousand).Round(0).String(),
		maximum.Div(thousand).Round(0).String())
}

func getJSON(ctx context.Context, client *http.Client, req *http.Request, dst interface{}) error {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api error (status: %d)", resp.StatusCode)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
