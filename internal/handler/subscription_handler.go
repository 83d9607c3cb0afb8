package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jiffyapply/internal/model"
	"jiffyapply/internal/service"
)

// SubscriptionHandler handles subscription endpoints.
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(subscriptions service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// SubscribeRequest carries the card form. The number and CVV are never stored.
type SubscribeRequest struct {
	CardNumber string `json:"cardNumber" validate:"required"`
	CardName   string `json:"cardName" validate:"required"`
	ExpiryDate string `json:"expiryDate" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// SubscriptionResponse wraps the resulting subscription.
type SubscriptionResponse struct {
	Message      string             `json:"message"`
	Subscription model.Subscription `json:"subscription"`
}

// Subscribe godoc
// @Summary Activate a subscription
// @Description Card details are only checked superficially; no payment is taken.
// @Tags subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscribeRequest true "Card details"
// @Success 200 {object} SubscriptionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /subscription/subscribe [post]
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	var req SubscribeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptions.Subscribe(c.Request().Context(), claims.UserID, service.CardDetails{
		CardNumber: req.CardNumber,
		CardName:   req.CardName,
		ExpiryDate: req.ExpiryDate,
		CVV:        req.CVV,
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, SubscriptionResponse{
		Message:      "Subscription activated successfully",
		Subscription: *sub,
	})
}

// Cancel godoc
// @Summary Cancel the active subscription
// @Tags subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SubscriptionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /subscription/cancel [post]
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}

	sub, err := h.subscriptions.Cancel(c.Request().Context(), claims.UserID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, SubscriptionResponse{
		Message:      "Subscription cancelled",
		Subscription: *sub,
	})
}
