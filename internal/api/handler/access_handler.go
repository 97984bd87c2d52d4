package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DentShare/Mystom/internal/api/middleware"
	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

// MenuItem is one gated section of the bot menu with its tier floor.
type MenuItem struct {
	Feature domain.Feature
	MinTier domain.Tier
}

// Menu lists the bot sections in display order. Viewing a section needs
// view on its feature and the tier floor of the effective owner.
var Menu = []MenuItem{
	{Feature: domain.FeatureCalendar, MinTier: domain.TierBasic},
	{Feature: domain.FeaturePatients, MinTier: domain.TierStandard},
	{Feature: domain.FeatureHistory, MinTier: domain.TierStandard},
	{Feature: domain.FeatureImplants, MinTier: domain.TierStandard},
	{Feature: domain.FeatureServices, MinTier: domain.TierBasic},
	{Feature: domain.FeatureFinance, MinTier: domain.TierPremium},
	{Feature: domain.FeatureExport, MinTier: domain.TierPremium},
	{Feature: domain.FeatureSettings, MinTier: domain.TierBasic},
}

// Requirement returns what viewing the section needs, at level l.
func (m MenuItem) Requirement(l domain.Level) domain.Requirement {
	return domain.Requirement{Feature: m.Feature, Level: l, MinTier: m.MinTier}
}

type AccessHandler struct {
	resolver ports.AccessService
}

func NewAccessHandler(resolver ports.AccessService) *AccessHandler {
	return &AccessHandler{resolver: resolver}
}

type menuEntry struct {
	Feature   domain.Feature `json:"feature"`
	Level     domain.Level   `json:"level"`
	MinTier   domain.Tier    `json:"min_tier"`
	Available bool           `json:"available"`
	// Reason is "tier" or "permission" when the entry is unavailable.
	Reason string `json:"reason,omitempty"`
}

type accessResponse struct {
	TelegramID       int64                `json:"telegram_id"`
	Role             domain.Role          `json:"role"`
	EffectiveOwnerID string               `json:"effective_owner_id"`
	Tier             domain.Tier          `json:"tier"`
	TierLabel        string               `json:"tier_label"`
	Permissions      domain.PermissionMap `json:"permissions"`
	Menu             []menuEntry          `json:"menu"`
}

// Get handles GET /api/access.
//
// @Summary      Resolved access of the caller
// @Description  Effective owner, subscription tier, permission map and menu availability.
// @Tags         access
// @Produce      json
// @Security     TelegramInitData
// @Success      200  {object}  accessResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/access [get]
func (h *AccessHandler) Get(c echo.Context) error {
	access, err := callerAccess(c)
	if err != nil {
		return err
	}

	menu := make([]menuEntry, 0, len(Menu))
	for _, item := range Menu {
		entry := menuEntry{
			Feature: item.Feature,
			Level:   access.Permissions.Level(item.Feature),
			MinTier: item.MinTier,
		}
		switch err := access.Authorize(item.Requirement(domain.LevelView)); {
		case err == nil:
			entry.Available = true
		case errors.Is(err, domain.ErrTierTooLow):
			entry.Reason = "tier"
		default:
			entry.Reason = "permission"
		}
		menu = append(menu, entry)
	}

	return c.JSON(http.StatusOK, accessResponse{
		TelegramID:       access.Account.TelegramID,
		Role:             access.Account.Role,
		EffectiveOwnerID: access.EffectiveOwner.ID,
		Tier:             access.EffectiveTier,
		TierLabel:        access.EffectiveTier.Label(),
		Permissions:      access.Permissions,
		Menu:             menu,
	})
}

type checkRequest struct {
	Feature string `query:"feature" json:"feature" validate:"required"`
	Level   string `query:"level" json:"level" validate:"omitempty,oneof=view edit"`
	MinTier int    `query:"min_tier" json:"min_tier" validate:"gte=0,lte=2"`
}

type checkResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Check handles GET /api/access/check.
//
// @Summary      Check one gated operation
// @Description  Resolves the caller and reports whether the requirement is met, with the message the bot shows on denial.
// @Tags         access
// @Produce      json
// @Security     TelegramInitData
// @Param        feature   query     string  true   "Feature key"
// @Param        level     query     string  false  "view (default) or edit"
// @Param        min_tier  query     int     false  "Tier floor (0-2)"
// @Success      200       {object}  checkResponse
// @Failure      400       {object}  errorResponse
// @Router       /api/access/check [get]
func (h *AccessHandler) Check(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	feature, ok := domain.ParseFeature(req.Feature)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown feature")
	}
	level := domain.LevelView
	if req.Level != "" {
		level = domain.Level(req.Level)
	}

	decision, err := h.resolver.Check(c.Request().Context(), p.ID, domain.Requirement{
		Feature: feature,
		Level:   level,
		MinTier: domain.Tier(req.MinTier),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkResponse{
		Allowed: decision.Allowed,
		Reason:  denialCode(decision.Reason),
		Message: decision.Message,
	})
}

func denialCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrTierTooLow):
		return "tier"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission"
	case errors.Is(err, domain.ErrOrphanedDelegate):
		return "orphaned"
	default:
		return "forbidden"
	}
}
