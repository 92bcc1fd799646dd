package app

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"hotelbook/internal/domain"
)

// EarthRadiusMiles is the radius used to turn a distance into radians.
const EarthRadiusMiles = 3963.0

// AngularRadius converts a distance in miles to a central angle.
func AngularRadius(miles float64) s1.Angle {
	return s1.Angle(miles / EarthRadiusMiles)
}

// SearchCap is the spherical cap centered on (lat, lng) covering miles.
func SearchCap(lat, lng, miles float64) s2.Cap {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng))
	return s2.CapFromCenterAngle(center, AngularRadius(miles))
}

// CapContains reports whether the point lies within the cap.
func CapContains(c s2.Cap, lat, lng float64) bool {
	return c.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lng)))
}

// CapBounds returns the lat/lng rectangle enclosing c, for index friendly
// pre-filtering in the store.
func CapBounds(c s2.Cap) domain.Bounds {
	r := c.RectBound()
	lo, hi := r.Lo(), r.Hi()
	b := domain.Bounds{
		MinLat: lo.Lat.Degrees(),
		MaxLat: hi.Lat.Degrees(),
		MinLng: lo.Lng.Degrees(),
		MaxLng: hi.Lng.Degrees(),
	}
	switch {
	case r.Lng.IsFull():
		b.AllLng = true
	case r.Lng.IsInverted():
		b.WrapsLng = true
	}
	return b
}
