package app

import "hotelbook/internal/domain"

// CanMutate reports whether actor may change a resource owned by ownerID.
func CanMutate(actor domain.Actor, ownerID int64) bool {
	return actor.ID == ownerID || actor.IsAdmin()
}

func authorize(actor domain.Actor, ownerID int64, format string, args ...any) error {
	if CanMutate(actor, ownerID) {
		return nil
	}
	return domain.Unauthorizedf(format, args...)
}
