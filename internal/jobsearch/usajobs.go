package jobsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"jiffyapply/internal/model"
)

// DefaultUSAJobsURL is the public USAJOBS API root.
const DefaultUSAJobsURL = "https://data.usajobs.gov"

// USAJobs searches the USAJOBS federal job board.
type USAJobs struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client
}

// NewUSAJobs creates a USAJOBS client. USAJOBS identifies callers by the
// User-Agent header, which must be the registered email address.
func NewUSAJobs(apiKey, userAgent string) *USAJobs {
	return &USAJobs{
		BaseURL:    DefaultUSAJobsURL,
		APIKey:     apiKey,
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (u *USAJobs) Name() model.JobSource { return model.SourceUSAJobs }

func (u *USAJobs) Enabled() bool { return u.APIKey != "" && u.UserAgent != "" }

type usaJobsResponse struct {
	SearchResult struct {
		SearchResultItems []struct {
			MatchedObjectID         string `json:"MatchedObjectId"`
			MatchedObjectDescriptor struct {
				PositionTitle           string `json:"PositionTitle"`
				OrganizationName        string `json:"OrganizationName"`
				PositionLocationDisplay string `json:"PositionLocationDisplay"`
				PositionURI             string `json:"PositionURI"`
				PublicationStartDate    string `json:"PublicationStartDate"`
				JobCategory             []struct {
					Name string `json:"Name"`
				} `json:"JobCategory"`
				PositionRemuneration []struct {
					MinimumRange string `json:"MinimumRange"`
					MaximumRange string `json:"MaximumRange"`
				} `json:"PositionRemuneration"`
			} `json:"MatchedObjectDescriptor"`
		} `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

func (u *USAJobs) Search(ctx context.Context, q Query) ([]Job, error) {
	params := url.Values{}
	params.Set("ResultsPerPage", strconv.Itoa(defaultResultsPerPage))
	params.Set("Page", strconv.Itoa(max(q.Page, 1)))
	if q.What != "" {
		params.Set("Keyword", q.What)
	}
	if q.Where != "" {
		params.Set("LocationName", q.Where)
	}

	req, err := http.NewRequest(http.MethodGet, u.BaseURL+"/api/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization-Key", u.APIKey)
	req.Header.Set("User-Agent", u.UserAgent)
	req.Header.Set("Accept", "application/json")

	var resp usaJobsResponse
	if err := getJSON(ctx, u.HTTPClient, req, &resp); err != nil {
		return nil, fmt.Errorf("usajobs: %w", err)
	}

	items := resp.SearchResult.SearchResultItems
	jobs := make([]Job, 0, len(items))
	for _, item := range items {
		d := item.MatchedObjectDescriptor
		job := Job{
			JobID:    item.MatchedObjectID,
			Title:    d.PositionTitle,
			Company:  d.OrganizationName,
			Location: d.PositionLocationDisplay,
			Salary:   salaryNotSpecified,
			URL:      d.PositionURI,
			PostedAt: d.PublicationStartDate,
			Source:   model.SourceUSAJobs,
		}
		if len(d.JobCategory) > 0 {
			job.Category = d.JobCategory[0].Name
		}
		if len(d.PositionRemuneration) > 0 {
			pay := d.PositionRemuneration[0]
			job.SalaryMin = parseAmount(pay.MinimumRange)
			job.Salary = FormatSalary(job.SalaryMin, parseAmount(pay.MaximumRange))
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
