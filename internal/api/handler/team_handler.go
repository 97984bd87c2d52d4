package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/DentShare/Mystom/internal/api/metrics"
	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/internal/core/ports"
)

// TeamHandler serves the owner/assistant team endpoints.
type TeamHandler struct {
	service ports.TeamService
}

func NewTeamHandler(service ports.TeamService) *TeamHandler {
	return &TeamHandler{service: service}
}

type redeemRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type permissionsRequest struct {
	Permissions map[string]string `json:"permissions" validate:"required"`
}

type permissionsResponse struct {
	TelegramID  int64                `json:"telegram_id"`
	Permissions domain.PermissionMap `json:"permissions"`
}

type redeemResponse struct {
	OwnerID     string               `json:"owner_id"`
	Permissions domain.PermissionMap `json:"permissions"`
}

func delegateParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid telegram_id")
	}
	return id, nil
}

// Team handles GET /api/team.
//
// @Summary      Team of the caller
// @Description  Owners see their delegates and pending invites; delegates see their owner.
// @Tags         team
// @Produce      json
// @Security     TelegramInitData
// @Success      200  {object}  ports.TeamView
// @Failure      403  {object}  errorResponse
// @Router       /api/team [get]
func (h *TeamHandler) Team(c echo.Context) error {
	access, err := callerAccess(c)
	if err != nil {
		return err
	}
	view, err := h.service.Team(c.Request().Context(), access.Account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// CreateInvite handles POST /api/team/invites.
//
// @Summary      Create an invite code
// @Tags         team
// @Produce      json
// @Security     TelegramInitData
// @Success      201  {object}  domain.InviteCode
// @Failure      403  {object}  errorResponse
// @Router       /api/team/invites [post]
func (h *TeamHandler) CreateInvite(c echo.Context) error {
	access, err := callerAccess(c)
	if err != nil {
		return err
	}
	invite, err := h.service.CreateInvite(c.Request().Context(), access.Account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, invite)
}

// Redeem handles POST /api/team/redeem.
//
// @Summary      Join a team with an invite code
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     TelegramInitData
// @Param        body  body      redeemRequest  true  "Invite code"
// @Success      200   {object}  redeemResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/team/redeem [post]
func (h *TeamHandler) Redeem(c echo.Context) error {
	var req redeemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	access, err := callerAccess(c)
	if err != nil {
		return err
	}

	link, err := h.service.Redeem(c.Request().Context(), access.Account, req.Code)
	metrics.InviteRedemptionsTotal.WithLabelValues(redemptionLabel(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, redeemResponse{OwnerID: link.OwnerID, Permissions: link.Permissions})
}

func redemptionLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyBound):
		return "already_bound"
	case errors.Is(err, domain.ErrSelfInvite):
		return "self_invite"
	case errors.Is(err, domain.ErrHasDelegates):
		return "has_delegates"
	default:
		return "error"
	}
}

// Leave handles POST /api/team/leave.
//
// @Summary      Leave the current team
// @Tags         team
// @Produce      json
// @Security     TelegramInitData
// @Success      200  {object}  statusResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/team/leave [post]
func (h *TeamHandler) Leave(c echo.Context) error {
	access, err := callerAccess(c)
	if err != nil {
		return err
	}
	if err := h.service.Leave(c.Request().Context(), access.Account); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// Unbind handles DELETE /api/team/delegates/:telegram_id.
//
// @Summary      Remove a delegate from the team
// @Tags         team
// @Produce      json
// @Security     TelegramInitData
// @Param        telegram_id  path      int  true  "Delegate Telegram id"
// @Success      200          {object}  statusResponse
// @Failure      403          {object}  errorResponse
// @Failure      409          {object}  errorResponse
// @Router       /api/team/delegates/{telegram_id} [delete]
func (h *TeamHandler) Unbind(c echo.Context) error {
	delegateID, err := delegateParam(c)
	if err != nil {
		return err
	}
	access, err := callerAccess(c)
	if err != nil {
		return err
	}
	if err := h.service.UnbindDelegate(c.Request().Context(), access.Account, delegateID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// SetPermissions handles PUT /api/team/delegates/:telegram_id/permissions.
//
// @Summary      Change a delegate's permissions
// @Description  Keys missing from the body keep their current level.
// @Tags         team
// @Accept       json
// @Produce      json
// @Security     TelegramInitData
// @Param        telegram_id  path      int                 true  "Delegate Telegram id"
// @Param        body         body      permissionsRequest  true  "feature -> none|view|edit"
// @Success      200          {object}  permissionsResponse
// @Failure      400          {object}  errorResponse
// @Failure      409          {object}  errorResponse
// @Router       /api/team/delegates/{telegram_id}/permissions [put]
func (h *TeamHandler) SetPermissions(c echo.Context) error {
	delegateID, err := delegateParam(c)
	if err != nil {
		return err
	}
	var req permissionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	access, err := callerAccess(c)
	if err != nil {
		return err
	}
	perms, err := h.service.SetPermissions(c.Request().Context(), access.Account, delegateID, req.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, permissionsResponse{TelegramID: delegateID, Permissions: perms})
}

// CyclePermission handles POST /api/team/delegates/:telegram_id/permissions/:feature/cycle.
//
// @Summary      Step a delegate's level on one feature (none, view, edit)
// @Tags         team
// @Produce      json
// @Security     TelegramInitData
// @Param        telegram_id  path      int     true  "Delegate Telegram id"
// @Param        feature      path      string  true  "Feature key"
// @Success      200          {object}  permissionsResponse
// @Failure      400          {object}  errorResponse
// @Router       /api/team/delegates/{telegram_id}/permissions/{feature}/cycle [post]
func (h *TeamHandler) CyclePermission(c echo.Context) error {
	delegateID, err := delegateParam(c)
	if err != nil {
		return err
	}
	access, err := callerAccess(c)
	if err != nil {
		return err
	}
	perms, err := h.service.CyclePermission(c.Request().Context(), access.Account, delegateID, domain.Feature(c.Param("feature")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, permissionsResponse{TelegramID: delegateID, Permissions: perms})
}
