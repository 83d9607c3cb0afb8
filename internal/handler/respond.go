package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jiffyapply/internal/auth"
	"jiffyapply/internal/errors"
)

// ContextKeyClaims is where the JWT middleware stores the verified *auth.Claims.
const ContextKeyClaims = "user"

// domainError translates a service error into an echo error carrying the
// standard body. The original error is kept for logging.
func domainError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func badRequest(msg, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// claimsFrom returns the identity of the authenticated caller.
func claimsFrom(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ContextKeyClaims).(*auth.Claims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "access denied, no token provided",
			Code:  "MISSING_TOKEN",
		})
	}
	return claims, nil
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body", "INVALID_BODY")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}
	return nil
}
