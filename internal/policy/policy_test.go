package policy

import (
	"testing"

	"pos-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func actor(role domain.Role) *domain.Actor {
	return &domain.Actor{ID: "u-1", Role: role}
}

func TestEvaluate_FullAccessRoles(t *testing.T) {
	areas := []Area{AreaAdmin, AreaKitchen, AreaServer, AreaCustomer, AreaPublic}
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleManager} {
		for _, area := range areas {
			dec := Evaluate(actor(role), area, "/x")
			assert.True(t, dec.Allowed, "%s into %s", role, area)
		}
	}
}

func TestEvaluate_Server(t *testing.T) {
	for _, area := range []Area{AreaServer, AreaCustomer, AreaPublic} {
		assert.True(t, Evaluate(actor(domain.RoleServer), area, "/x").Allowed, string(area))
	}

	dec := Evaluate(actor(domain.RoleServer), AreaAdmin, "/dashboard/admin/staff")
	assert.False(t, dec.Allowed)
	assert.Equal(t, "/dashboard/server", dec.RedirectTo)

	dec = Evaluate(actor(domain.RoleServer), AreaKitchen, "/dashboard/kitchen")
	assert.False(t, dec.Allowed)
	assert.Equal(t, "/dashboard/server", dec.RedirectTo)
}

func TestEvaluate_Kitchen(t *testing.T) {
	for _, area := range []Area{AreaKitchen, AreaCustomer, AreaPublic} {
		assert.True(t, Evaluate(actor(domain.RoleKitchen), area, "/x").Allowed, string(area))
	}
	for _, area := range []Area{AreaAdmin, AreaServer} {
		dec := Evaluate(actor(domain.RoleKitchen), area, "/x")
		assert.False(t, dec.Allowed)
		assert.Equal(t, "/dashboard/kitchen", dec.RedirectTo)
	}
}

func TestEvaluate_Customer(t *testing.T) {
	for _, area := range []Area{AreaCustomer, AreaPublic} {
		assert.True(t, Evaluate(actor(domain.RoleCustomer), area, "/x").Allowed, string(area))
	}
	for _, area := range []Area{AreaAdmin, AreaKitchen, AreaServer} {
		dec := Evaluate(actor(domain.RoleCustomer), area, "/x")
		assert.False(t, dec.Allowed)
		assert.Equal(t, "/customer", dec.RedirectTo)
	}
}

func TestEvaluate_Unauthenticated(t *testing.T) {
	assert.True(t, Evaluate(nil, AreaPublic, "/menu").Allowed)
	assert.True(t, Evaluate(nil, AreaCustomer, "/customer").Allowed)

	dec := Evaluate(nil, AreaKitchen, "/dashboard/kitchen/orders")
	assert.False(t, dec.Allowed)
	// the requested path survives the round trip through sign-in
	assert.Equal(t, "/auth/signin?callbackUrl=%2Fdashboard%2Fkitchen%2Forders", dec.RedirectTo)
}
