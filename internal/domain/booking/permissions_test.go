package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"photosession/internal/domain/audit"
)

func TestAuthorize(t *testing.T) {
	pid := int64(7)
	b := &Booking{CustomerID: 20, PhotographerID: &pid}

	owner := audit.Actor{ID: 20, Role: audit.RoleCustomer}
	other := audit.Actor{ID: 21, Role: audit.RoleCustomer}
	assigned := audit.Actor{ID: 7, Role: audit.RolePhotographer}
	unassigned := audit.Actor{ID: 8, Role: audit.RolePhotographer}
	admin := audit.Actor{ID: 1, Role: audit.RoleAdmin}

	cases := []struct {
		name    string
		actor   audit.Actor
		action  Action
		allowed bool
	}{
		{"owner cancels", owner, Cancel{}, true},
		{"owner reschedules", owner, Reschedule{}, true},
		{"owner cannot confirm", owner, Confirm{}, false},
		{"owner cannot complete", owner, Complete{}, false},
		{"other customer cancels", other, Cancel{}, false},
		{"assigned photographer confirms", assigned, Confirm{}, true},
		{"assigned photographer starts", assigned, Start{}, true},
		{"assigned photographer completes", assigned, Complete{}, true},
		{"assigned photographer cancels", assigned, Cancel{}, true},
		{"assigned photographer cannot reschedule", assigned, Reschedule{}, false},
		{"unassigned photographer confirms", unassigned, Confirm{}, false},
		{"admin reschedules", admin, Reschedule{}, true},
		{"anonymous", audit.Actor{}, Cancel{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, b, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestCanViewAndEdit(t *testing.T) {
	pid := int64(7)
	b := &Booking{CustomerID: 20, PhotographerID: &pid}

	assert.True(t, CanView(audit.Actor{ID: 20, Role: audit.RoleCustomer}, b))
	assert.True(t, CanView(audit.Actor{ID: 7, Role: audit.RolePhotographer}, b))
	assert.True(t, CanView(audit.Actor{ID: 1, Role: audit.RoleAdmin}, b))
	assert.False(t, CanView(audit.Actor{ID: 21, Role: audit.RoleCustomer}, b))

	assert.True(t, CanEditServices(audit.Actor{ID: 20, Role: audit.RoleCustomer}, b))
	assert.False(t, CanEditServices(audit.Actor{ID: 7, Role: audit.RolePhotographer}, b))
}
