// Package policy maps an authenticated role to the route areas it may enter.
// It is a pure table; the HTTP layer passes the actor in explicitly per
// request.
package policy

import (
	"net/url"

	"pos-service/internal/domain"
)

type Area string

const (
	AreaAdmin    Area = "ADMIN_AREA"
	AreaKitchen  Area = "KITCHEN_AREA"
	AreaServer   Area = "SERVER_AREA"
	AreaCustomer Area = "CUSTOMER_AREA"
	AreaPublic   Area = "PUBLIC"
)

const SignInPath = "/auth/signin"

// Decision is either an allow or a redirect target. A denial is never a
// silent pass-through.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

var roleAreas = map[domain.Role]map[Area]bool{
	domain.RoleAdmin:    {AreaAdmin: true, AreaKitchen: true, AreaServer: true, AreaCustomer: true, AreaPublic: true},
	domain.RoleManager:  {AreaAdmin: true, AreaKitchen: true, AreaServer: true, AreaCustomer: true, AreaPublic: true},
	domain.RoleServer:   {AreaServer: true, AreaCustomer: true, AreaPublic: true},
	domain.RoleKitchen:  {AreaKitchen: true, AreaCustomer: true, AreaPublic: true},
	domain.RoleCustomer: {AreaCustomer: true, AreaPublic: true},
}

// HomePath is where a denied actor is sent: their own dashboard.
func HomePath(role domain.Role) string {
	switch role {
	case domain.RoleAdmin, domain.RoleManager:
		return "/dashboard/admin"
	case domain.RoleKitchen:
		return "/dashboard/kitchen"
	case domain.RoleServer:
		return "/dashboard/server"
	default:
		return "/customer"
	}
}

// Evaluate decides whether the actor may enter the area. A nil actor is an
// unauthenticated request: public and customer areas are open, anything else
// redirects to sign-in with the requested path preserved as the callback.
func Evaluate(actor *domain.Actor, area Area, requestedPath string) Decision {
	if area == AreaPublic || area == AreaCustomer {
		if actor == nil || roleAreas[actor.Role][area] {
			return Decision{Allowed: true}
		}
	}
	if actor == nil {
		return Decision{RedirectTo: SignInPath + "?callbackUrl=" + url.QueryEscape(requestedPath)}
	}
	if roleAreas[actor.Role][area] {
		return Decision{Allowed: true}
	}
	return Decision{RedirectTo: HomePath(actor.Role)}
}
