package booking

import "photosession/internal/domain/audit"

// Authorize decides whether actor may run action on b. Customers manage their
// own bookings; photographers run the sessions assigned to them.
func Authorize(actor audit.Actor, b *Booking, action Action) error {
	switch actor.Role {
	case audit.RoleAdmin:
		return nil
	case audit.RoleCustomer:
		if b.CustomerID != actor.ID {
			return ErrForbidden
		}
		switch action.(type) {
		case Cancel, Reschedule:
			return nil
		}
	case audit.RolePhotographer:
		if !b.IsPhotographer(actor.ID) {
			return ErrForbidden
		}
		switch action.(type) {
		case Confirm, Start, Complete, Cancel:
			return nil
		}
	}
	return ErrForbidden
}

func CanView(actor audit.Actor, b *Booking) bool {
	switch actor.Role {
	case audit.RoleAdmin:
		return true
	case audit.RoleCustomer:
		return b.CustomerID == actor.ID
	case audit.RolePhotographer:
		return b.IsPhotographer(actor.ID)
	}
	return false
}

// CanEditServices allows the owning customer and admins to change line items.
func CanEditServices(actor audit.Actor, b *Booking) bool {
	return actor.IsAdmin() || (actor.Role == audit.RoleCustomer && b.CustomerID == actor.ID)
}
