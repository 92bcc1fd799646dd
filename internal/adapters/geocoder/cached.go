package geocoder

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"hotelbook/internal/domain"
)

// Cached memoizes successful lookups. Empty results are not stored so a
// location that starts resolving later is picked up.
type Cached struct {
	next   domain.Geocoder
	cache  domain.Cache
	ttlSec int
}

func NewCached(next domain.Geocoder, cache domain.Cache, ttlSec int) *Cached {
	return &Cached{next: next, cache: cache, ttlSec: ttlSec}
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(query))
}

func (c *Cached) Geocode(ctx context.Context, query string) ([]domain.GeoPoint, error) {
	key := cacheKey(query)
	var pts []domain.GeoPoint
	if ok, err := c.cache.Get(ctx, key, &pts); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
	} else if ok {
		return pts, nil
	}

	pts, err := c.next.Geocode(ctx, query)
	if err != nil || len(pts) == 0 {
		return pts, err
	}
	if err := c.cache.Set(ctx, key, pts, c.ttlSec); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
	}
	return pts, nil
}
