package geocoder

import (
	"context"
	"strings"

	"github.com/andreiashu/geobed"

	"hotelbook/internal/domain"
)

// Place is one city match from an offline index.
type Place struct {
	City    string
	Region  string
	Country string
	Lat     float64
	Lng     float64
}

type CityIndex interface {
	Lookup(query string) (Place, bool)
}

type geobedIndex struct {
	g    *geobed.GeoBed
	opts geobed.GeocodeOptions
}

func (x geobedIndex) Lookup(query string) (Place, bool) {
	c := x.g.Geocode(query, x.opts)
	if c.City == "" {
		return Place{}, false
	}
	return Place{
		City:    c.City,
		Region:  c.Region(),
		Country: c.Country(),
		Lat:     float64(c.Latitude),
		Lng:     float64(c.Longitude),
	}, true
}

// Offline geocodes against the geonames city index. It resolves place
// names ("Boston, MA") rather than postal codes; a query it cannot place
// yields no results.
type Offline struct{ idx CityIndex }

// NewOffline loads the city index from dataDir/cacheDir, downloading the
// raw datasets on first use.
func NewOffline(dataDir, cacheDir string) (*Offline, error) {
	var opts []geobed.Option
	if dataDir != "" {
		opts = append(opts, geobed.WithDataDir(dataDir))
	}
	if cacheDir != "" {
		opts = append(opts, geobed.WithCacheDir(cacheDir))
	}
	g, err := geobed.NewGeobed(opts...)
	if err != nil {
		return nil, err
	}
	return NewOfflineIndex(geobedIndex{g: g, opts: geobed.GeocodeOptions{FuzzyDistance: 1}}), nil
}

func NewOfflineIndex(idx CityIndex) *Offline { return &Offline{idx: idx} }

func (o *Offline) Geocode(ctx context.Context, query string) ([]domain.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	p, ok := o.idx.Lookup(query)
	if !ok {
		return nil, nil
	}
	return []domain.GeoPoint{{
		Lat:              p.Lat,
		Lng:              p.Lng,
		FormattedAddress: joinNonEmpty(", ", p.City, p.Region, p.Country),
		City:             p.City,
		State:            p.Region,
		Country:          p.Country,
	}}, nil
}
