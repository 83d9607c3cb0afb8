// Command seed creates a demo account and logs a handful of applications
// against live job board postings, the same way the dashboard's auto-apply
// button does.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"jiffyapply/internal/auth"
	"jiffyapply/internal/cache"
	"jiffyapply/internal/config"
	"jiffyapply/internal/db"
	"jiffyapply/internal/errors"
	"jiffyapply/internal/jobsearch"
	"jiffyapply/internal/lib/sl"
	"jiffyapply/internal/model"
	"jiffyapply/internal/repository"
	"jiffyapply/internal/service"
)

const (
	demoEmail    = "demo@jiffyapply.dev"
	demoPassword = "demo-password"
	autoApplyMax = 5
	searchWhat   = "software engineer"
)

// fallbackJobs is used when no job board credentials are configured.
var fallbackJobs = []jobsearch.Job{
	{JobID: "seed-1", Title: "Backend Engineer", Company: "Acme Corp", Location: "Remote", Salary: "$120K - $150K", Source: model.SourceAdzuna},
	{JobID: "seed-2", Title: "Platform Engineer", Company: "Globex", Location: "Austin, TX", Salary: "Not specified", Source: model.SourceAdzuna},
	{JobID: "seed-3", Title: "IT Specialist", Company: "Department of Energy", Location: "Washington, DC", Salary: "$90K - $117K", Source: model.SourceUSAJobs},
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(context.Background(), log); err != nil {
		log.Error("seed failed", sl.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	log.Info("database ready")

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)
	tokenStore := auth.NewTokenStore(cacheClient)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL, tokenStore)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cfg.FreeApplications)
	applicationService := service.NewApplicationService(
		repository.NewApplicationRepository(gormDB), repository.NewTransactor(gormDB), cacheClient)

	user, created, err := ensureDemoUser(ctx, authService)
	if err != nil {
		return err
	}
	log.Info("demo user ready",
		slog.String("email", user.Email),
		slog.Bool("created", created),
		slog.Int("free_applications_remaining", user.FreeApplicationsRemaining),
	)

	searcher := jobsearch.NewSearcher(cacheClient, log,
		jobsearch.NewAdzuna(cfg.Jobs.AdzunaAppID, cfg.Jobs.AdzunaAppKey, cfg.Jobs.AdzunaCountry),
		jobsearch.NewUSAJobs(cfg.Jobs.USAJobsAPIKey, cfg.Jobs.USAJobsUserAgent),
	)
	jobs := fetchJobs(ctx, log, searcher)

	result, err := applicationService.CreateBulk(ctx, user.ID, toInputs(jobs, time.Now()))
	if err != nil {
		return fmt.Errorf("create applications: %w", err)
	}

	log.Info("seed completed",
		slog.Int("applications_created", len(result.Applications)),
		slog.Int("free_applications_remaining", result.FreeApplicationsRemaining),
		slog.Bool("requires_subscription", result.RequiresSubscription),
	)
	return nil
}

// ensureDemoUser registers the demo account, or logs into it when it already exists.
func ensureDemoUser(ctx context.Context, authService service.AuthService) (*model.User, bool, error) {
	_, user, err := authService.Register(ctx, service.RegisterInput{
		Email:     demoEmail,
		Password:  demoPassword,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err == nil {
		return user, true, nil
	}
	if !stderrors.Is(err, errors.ErrConflict) {
		return nil, false, fmt.Errorf("register demo user: %w", err)
	}

	_, user, err = authService.Login(ctx, demoEmail, demoPassword)
	if err != nil {
		return nil, false, fmt.Errorf("login demo user: %w", err)
	}
	return user, false, nil
}

func fetchJobs(ctx context.Context, log *slog.Logger, searcher *jobsearch.Searcher) []jobsearch.Job {
	res, err := searcher.Search(ctx, jobsearch.Query{What: searchWhat, Page: 1, Source: model.SourceAdzuna})
	if err != nil {
		log.Warn("job search unavailable, using built-in postings", sl.Err(err))
		return fallbackJobs
	}
	jobs := completePostings(res.Jobs)
	if len(jobs) == 0 {
		log.Warn("no complete postings returned, using built-in postings", slog.Int("returned", len(res.Jobs)))
		return fallbackJobs
	}
	if len(jobs) > autoApplyMax {
		jobs = jobs[:autoApplyMax]
	}
	log.Info("fetched postings", slog.Int("count", len(jobs)))
	return jobs
}

// completePostings drops postings that could not be logged as an application.
// Boards occasionally omit the company or title.
func completePostings(jobs []jobsearch.Job) []jobsearch.Job {
	out := make([]jobsearch.Job, 0, len(jobs))
	for _, j := range jobs {
		if strings.TrimSpace(j.JobID) == "" || strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.Company) == "" {
			continue
		}
		out = append(out, j)
	}
	return out
}

func toInputs(jobs []jobsearch.Job, now time.Time) []service.ApplicationInput {
	consider := now.AddDate(0, 0, 14)
	inputs := make([]service.ApplicationInput, 0, len(jobs))
	for _, j := range jobs {
		inputs = append(inputs, service.ApplicationInput{
			JobID:             j.JobID,
			Title:             j.Title,
			Company:           j.Company,
			Location:          j.Location,
			Salary:            j.Salary,
			ConsiderationDate: &consider,
			Status:            model.StatusApplied,
			Source:            j.Source,
			Notes:             "Auto-applied via Jiffy Apply",
		})
	}
	return inputs
}
