package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/DentShare/Mystom/internal/core/domain"
	"github.com/DentShare/Mystom/pkg/initdata"
)

const (
	principalKey = "principal"
	accountKey   = "account"
	accessKey    = "access"
)

// PrincipalFrom returns the identity set by InitData.
func PrincipalFrom(c echo.Context) (initdata.Principal, bool) {
	p, ok := c.Get(principalKey).(initdata.Principal)
	return p, ok
}

// AccountFrom returns the account set by LoadAccess.
func AccountFrom(c echo.Context) (*domain.Account, bool) {
	a, ok := c.Get(accountKey).(*domain.Account)
	return a, ok && a != nil
}

// AccessFrom returns the resolved access set by LoadAccess.
func AccessFrom(c echo.Context) (*domain.Access, bool) {
	a, ok := c.Get(accessKey).(*domain.Access)
	return a, ok && a != nil
}

// SetPrincipal is used by InitData and by tests.
func SetPrincipal(c echo.Context, p initdata.Principal) { c.Set(principalKey, p) }

// SetAccess stores the account and its resolved access.
func SetAccess(c echo.Context, access *domain.Access) {
	c.Set(accountKey, access.Account)
	c.Set(accessKey, access)
}
