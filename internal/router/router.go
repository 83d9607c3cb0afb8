package router

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"jiffyapply/internal/auth"
	"jiffyapply/internal/config"
	"jiffyapply/internal/handler"
	"jiffyapply/internal/lib/sl"
)

const maxBodySize = "6M"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Subscription *handler.SubscriptionHandler
	Application  *handler.ApplicationHandler
	Job          *handler.JobHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, log *slog.Logger, tokens TokenValidator, h Handlers) {
	e.HTTPErrorHandler = NewErrorHandler(log)
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(maxBodySize))

	e.GET("/", h.Health.Root)
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	authGroup := api.Group("/auth", middleware.RateLimiter(
		middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.AuthRateLimit)),
	))
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	// Secured routes (require JWT authentication)
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		ContextKey: handler.ContextKeyClaims,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return tokens.ValidateToken(c.Request().Context(), token)
		},
		ErrorHandler: jwtErrorHandler,
	})

	authGroup.POST("/logout", h.Auth.Logout, jwtMiddleware)

	secured := api.Group("", jwtMiddleware)

	secured.GET("/user/profile", h.User.GetProfile)
	secured.POST("/user/acknowledge-fees", h.User.AcknowledgeFees)
	secured.POST("/user/resume", h.User.UploadResume)

	secured.POST("/subscription/subscribe", h.Subscription.Subscribe)
	secured.POST("/subscription/cancel", h.Subscription.Cancel)

	secured.GET("/applications", h.Application.List)
	secured.POST("/applications", h.Application.Create)
	secured.POST("/applications/bulk", h.Application.CreateBulk)
	secured.PATCH("/applications/:id", h.Application.Update)
	secured.DELETE("/applications/:id", h.Application.Delete)

	secured.GET("/jobs/search", h.Job.Search)
}

// jwtErrorHandler answers 401 when no token was presented and 403 when the
// presented token is not acceptable.
func jwtErrorHandler(c echo.Context, err error) error {
	var extractErr *echojwt.TokenExtractionError
	if stderrors.As(err, &extractErr) {
		return echo.NewHTTPError(http.StatusUnauthorized, errorBody("access denied, no token provided", "MISSING_TOKEN"))
	}
	return echo.NewHTTPError(http.StatusForbidden, errorBody("invalid or expired token", "INVALID_TOKEN")).SetInternal(err)
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, sl.Err(v.Error))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			log.LogAttrs(c.Request().Context(), level, "request completed", attrs...)
			return nil
		},
	})
}
