package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DentShare/Mystom/internal/core/ports"
)

type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Delete handles DELETE /api/account.
//
// @Summary      Delete the caller's account
// @Description  Removes the account, its invites and every team link. Delegates of the caller become owners.
// @Tags         account
// @Produce      json
// @Security     TelegramInitData
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/account [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	access, err := callerAccess(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Delete(c.Request().Context(), access.Account); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Status: "deleted"})
}
