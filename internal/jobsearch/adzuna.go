package jobsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"jiffyapply/internal/model"
)

// DefaultAdzunaURL is the public Adzuna API root.
const DefaultAdzunaURL = "https://api.adzuna.com"

// Adzuna searches the Adzuna job board.
type Adzuna struct {
	BaseURL    string
	AppID      string
	AppKey     string
	Country    string
	HTTPClient *http.Client
}

// NewAdzuna creates an Adzuna client for the given country code.
func NewAdzuna(appID, appKey, country string) *Adzuna {
	if country == "" {
		country = "us"
	}
	return &Adzuna{
		BaseURL:    DefaultAdzunaURL,
		AppID:      appID,
		AppKey:     appKey,
		Country:    strings.ToLower(country),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (a *Adzuna) Name() model.JobSource { return model.SourceAdzuna }

func (a *Adzuna) Enabled() bool { return a.AppID != "" && a.AppKey != "" }

type adzunaResponse struct {
	Results []struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Created  string `json:"created"`
		Redirect string `json:"redirect_url"`
		Company  struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location struct {
			DisplayName string `json:"display_name"`
		} `json:"location"`
		Category struct {
			Label string `json:"label"`
		} `json:"category"`
		SalaryMin decimal.Decimal `json:"salary_min"`
		SalaryMax decimal.Decimal `json:"salary_max"`
	} `json:"results"`
}

func (a *Adzuna) Search(ctx context.Context, q Query) ([]Job, error) {
	page := max(q.Page, 1)
	params := url.Values{}
	params.Set("app_id", a.AppID)
	params.Set("app_key", a.AppKey)
	params.Set("results_per_page", strconv.Itoa(defaultResultsPerPage))
	params.Set("sort_by", "date")
	if q.What != "" {
		params.Set("what", q.What)
	}
	if q.Where != "" {
		params.Set("where", q.Where)
	}

	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/%d?%s", a.BaseURL, a.Country, page, params.Encode())
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var resp adzunaResponse
	if err := getJSON(ctx, a.HTTPClient, req, &resp); err != nil {
		return nil, fmt.Errorf("adzuna: %w", err)
	}

	jobs := make([]Job, 0, len(resp.Results))
	for _, r := range resp.Results {
		jobs = append(jobs, Job{
			JobID:    r.ID,
			Title:    r.Title,
			Company:  r.Company.DisplayName,
			Location: r.Location.DisplayName,
			Salary:   FormatSalary(r.SalaryMin, r.SalaryMax),
			URL:      r.Redirect,
			Category: r.Category.Label,
			PostedAt: r.Created,
			Source:   model.SourceAdzuna,

			SalaryMin: r.SalaryMin,
		})
	}
	return jobs, nil
}
