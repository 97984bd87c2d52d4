package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DentShare/Mystom/internal/api/middleware"
	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

const defaultUserListLimit = 200

// AdminHandler serves the subscription admin panel.
type AdminHandler struct {
	accounts ports.AccountService
}

func NewAdminHandler(accounts ports.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

type meResponse struct {
	TelegramID int64 `json:"telegram_id"`
	OK         bool  `json:"ok"`
}

type userResponse struct {
	ID                  string      `json:"id"`
	TelegramID          int64       `json:"telegram_id"`
	FullName            string      `json:"full_name"`
	Role                domain.Role `json:"role"`
	SubscriptionTier    domain.Tier `json:"subscription_tier"`
	TierLabel           string      `json:"tier_label"`
	SubscriptionEndDate *string     `json:"subscription_end_date"`
	CreatedAt           string      `json:"created_at"`
}

// updateUserRequest leaves fields it does not carry untouched.
// subscription_end_date is YYYY-MM-DD, or "" / "null" for no end date.
type updateUserRequest struct {
	SubscriptionTier    *int    `json:"subscription_tier" validate:"omitempty,gte=0,lte=2"`
	SubscriptionEndDate *string `json:"subscription_end_date"`
}

func toUserResponse(a *domain.Account) userResponse {
	resp := userResponse{
		ID:               a.ID,
		TelegramID:       a.TelegramID,
		FullName:         a.FullName,
		Role:             a.Role,
		SubscriptionTier: a.Tier,
		TierLabel:        a.Tier.Label(),
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
	}
	if a.SubscriptionEndsAt != nil {
		d := a.SubscriptionEndsAt.Format("2006-01-02")
		resp.SubscriptionEndDate = &d
	}
	return resp
}

// Me handles GET /api/me.
//
// @Summary      Check admin access
// @Tags         admin
// @Produce      json
// @Security     TelegramInitData
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/me [get]
func (h *AdminHandler) Me(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, meResponse{TelegramID: p.ID, OK: true})
}

// ListUsers handles GET /api/users.
//
// @Summary      List accounts, newest first
// @Tags         admin
// @Produce      json
// @Security     TelegramInitData
// @Param        limit  query     int  false  "Maximum accounts (max 200)"
// @Success      200    {array}   userResponse
// @Failure      403    {object}  errorResponse
// @Router       /api/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit := defaultUserListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	accounts, err := h.accounts.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	out := make([]userResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toUserResponse(a))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateUser handles PATCH /api/users/:id.
//
// @Summary      Change an account's subscription
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     TelegramInitData
// @Param        id    path      string             true  "Account id"
// @Param        body  body      updateUserRequest  true  "Subscription fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.UpdateSubscription(c.Request().Context(), c.Param("id"), req.SubscriptionTier, req.SubscriptionEndDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(account))
}

// DeleteUser handles DELETE /api/users/:id.
//
// @Summary      Delete an account and its team links
// @Tags         admin
// @Produce      json
// @Security     TelegramInitData
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  statusResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.accounts.DeleteByID(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "deleted"})
}
