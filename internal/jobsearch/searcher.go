package jobsearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jiffyapply/internal/cache"
	apperrors "jiffyapply/internal/errors"
	"jiffyapply/internal/lib/sl"
	"jiffyapply/internal/metrics"
	"jiffyapply/internal/model"
)

// CacheTTL is how long an aggregated result is reused.
const CacheTTL = 10 * time.Minute

// Result is the aggregated answer across boards. Jobs keep the board order
// of the Searcher's sources.
type Result struct {
	Jobs          []Job             `json:"jobs"`
	Categories    []CategoryStat    `json:"categories"`
	FailedSources []model.JobSource `json:"failedSources"`
}

// Searcher fans a query out to every enabled board.
type Searcher struct {
	sources []Source
	cache   *cache.Client
	log     *slog.Logger
}

// NewSearcher creates a searcher over sources.
func NewSearcher(c *cache.Client, log *slog.Logger, sources ...Source) *Searcher {
	return &Searcher{sources: sources, cache: c, log: log}
}

// Search queries the boards in parallel. A failing board is reported in
// FailedSources; only when every queried board fails is an error returned.
func (s *Searcher) Search(ctx context.Context, q Query) (*Result, error) {
	const op = "jobsearch.Search"
	log := s.log.With(slog.String("op", op))

	if q.Source != "" && !q.Source.Valid() {
		return nil, apperrors.New(apperrors.ErrValidation, fmt.Sprintf("source must be %s or %s", model.SourceAdzuna, model.SourceUSAJobs))
	}
	q.Page = max(q.Page, 1)

	var active []Source
	for _, src := range s.sources {
		if src.Enabled() && (q.Source == "" || q.Source == src.Name()) {
			active = append(active, src)
		}
	}
	if len(active) == 0 {
		return nil, apperrors.New(apperrors.ErrUpstream, "no job source is configured")
	}

	key := cacheKey(q)
	var cached Result
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	perSource := make([][]Job, len(active))
	errs := make([]error, len(active))

	// Board failures are recorded per slot so one board never cancels another.
	var g errgroup.Group
	for i, src := range active {
		g.Go(func() error {
			jobs, err := src.Search(ctx, q)
			if err != nil {
				errs[i] = err
				metrics.JobSearches.WithLabelValues(string(src.Name()), "error").Inc()
				return nil
			}
			perSource[i] = jobs
			metrics.JobSearches.WithLabelValues(string(src.Name()), "ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	res := &Result{Jobs: make([]Job, 0), FailedSources: make([]model.JobSource, 0)}
	for i, src := range active {
		if errs[i] != nil {
			log.Warn("job source failed", slog.String("source", string(src.Name())), sl.Err(errs[i]))
			res.FailedSources = append(res.FailedSources, src.Name())
			continue
		}
		res.Jobs = append(res.Jobs, perSource[i]...)
	}

	if len(res.FailedSources) == len(active) {
		return nil, apperrors.New(apperrors.ErrUpstream, "job search is temporarily unavailable")
	}
	res.Categories = Categorize(res.Jobs)
	if len(res.FailedSources) == 0 {
		s.cache.SetJSON(ctx, key, res, CacheTTL)
	}
	return res, nil
}

func cacheKey(q Query) string {
	return fmt.Sprintf("jobs:%s:%s:%d:%s",
		strings.ToLower(strings.TrimSpace(q.What)),
		strings.ToLower(strings.TrimSpace(q.Where)),
		q.Page, q.Source)
}
