// internal/adapters/geocoder/mapquest.go
package geocoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"hotelbook/internal/adapters/observability"
	"hotelbook/internal/domain"
)

const DefaultMapQuestURL = "https://www.mapquestapi.com"

var (
	ErrUnauthorized = errors.New("geocoder: unauthorized")
	ErrForbidden    = errors.New("geocoder: forbidden")
	ErrRateLimited  = errors.New("geocoder: rate limited")
)

// MapQuest resolves locations with the MapQuest geocoding API.
type MapQuest struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func NewMapQuest(base, key string, rps int) (*MapQuest, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if base == "" {
		base = DefaultMapQuestURL
	}
	if rps <= 0 {
		rps = 5
	}
	return &MapQuest{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type mqResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mqLocation `json:"locations"`
	} `json:"results"`
}

type mqLocation struct {
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	AdminArea5 string `json:"adminArea5"` // city
	AdminArea3 string `json:"adminArea3"` // state
	AdminArea1 string `json:"adminArea1"` // country
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func (l mqLocation) point() domain.GeoPoint {
	return domain.GeoPoint{
		Lat:              l.LatLng.Lat,
		Lng:              l.LatLng.Lng,
		FormattedAddress: joinNonEmpty(", ", l.Street, l.AdminArea5, strings.TrimSpace(l.AdminArea3+" "+l.PostalCode), l.AdminArea1),
		Zipcode:          l.PostalCode,
		City:             l.AdminArea5,
		State:            l.AdminArea3,
		Country:          l.AdminArea1,
	}
}

func (m *MapQuest) Geocode(ctx context.Context, query string) ([]domain.GeoPoint, error) {
	q := url.Values{}
	q.Set("key", m.key)
	q.Set("location", query)
	u := m.base + "/geocoding/v1/address?" + q.Encode()

	var out mqResponse
	if err := m.get(ctx, u, &out); err != nil {
		return nil, err
	}
	if out.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocoder status %d: %s", out.Info.StatusCode, strings.Join(out.Info.Messages, "; "))
	}
	var pts []domain.GeoPoint
	for _, r := range out.Results {
		for _, l := range r.Locations {
			pts = append(pts, l.point())
		}
	}
	return pts, nil
}

// get performs a rate limited GET and decodes the JSON body into out.
// A failed lookup surfaces to the caller as is; nothing is retried.
func (m *MapQuest) get(ctx context.Context, u string, out any) error {
	if err := m.rl.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotelbook/1.0")

	start := time.Now()
	resp, err := m.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("mapquest", "geocode", 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("mapquest", "geocode", resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}
