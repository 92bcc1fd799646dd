//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotelbook/internal/adapters/auth"
	"hotelbook/internal/adapters/geocoder"
	server "hotelbook/internal/adapters/http_server"
	"hotelbook/internal/adapters/photostore"
	redisad "hotelbook/internal/adapters/redis"
	"hotelbook/internal/app"
	"hotelbook/internal/domain"
	mysqlrepo "hotelbook/internal/storage/mysql"
)

// ---------- helpers ----------

func migrationsDir(t *testing.T) string {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	return dir
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

type cityIndex map[string]geocoder.Place

func (c cityIndex) Lookup(q string) (geocoder.Place, bool) {
	p, ok := c[q]
	return p, ok
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func call(t *testing.T, method, url, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return res.StatusCode, env
}

// ---------- the test ----------

func TestHTTP_EndToEnd_HotelLifecycle(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotelbook",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotelbook?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	// wire the real stack
	repo := mysqlrepo.New(db)
	disk, err := photostore.NewDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	geo := geocoder.NewCached(geocoder.NewOfflineIndex(cityIndex{
		"02108": {City: "Boston", Region: "MA", Country: "US", Lat: 42.3601, Lng: -71.0589},
	}), cache, 60)
	tokens := auth.NewTokens("e2e-secret")
	policy := app.NewPhotoPolicy(disk, 1_000_000)
	agg := app.NewAggregator(repo, repo, repo, cache)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{
		Hotels:    app.NewHotelService(repo, geo, cache, time.Minute, policy),
		Rooms:     app.NewRoomService(repo, repo, agg, policy),
		Reviews:   app.NewReviewService(repo, repo, agg),
		Auth:      server.NewAuthenticator(tokens, repo),
		MaxUpload: 1_000_000,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	ctx := context.Background()
	pub := domain.User{Name: "Pub", Email: "pub@example.com", Role: domain.RolePublisher}
	guest := domain.User{Name: "Guest", Email: "guest@example.com", Role: domain.RoleUser}
	for _, u := range []*domain.User{&pub, &guest} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	pubTok, _ := tokens.Sign(pub.ID, time.Hour)
	guestTok, _ := tokens.Sign(guest.ID, time.Hour)
	api := ts.URL + "/api/v1"

	// create
	status, env := call(t, http.MethodPost, api+"/hotels", pubTok, map[string]any{
		"name": "Cambridge Suites", "description": "Across the river",
		"location": map[string]any{"lat": 42.3736, "lng": -71.1097},
	})
	if status != http.StatusCreated {
		t.Fatalf("create hotel: %d %s", status, env.Error)
	}
	var hotel domain.Hotel
	_ = json.Unmarshal(env.Data, &hotel)

	// rooms drive averageCost
	for _, cost := range []float64{99, 150} {
		status, env = call(t, http.MethodPost, fmt.Sprintf("%s/hotels/%d/rooms", api, hotel.ID), pubTok, map[string]any{
			"title": "Room", "description": "d", "cost": cost, "roomType": []string{"Double"}, "minimumOccupancy": 2,
		})
		if status != http.StatusOK {
			t.Fatalf("add room: %d %s", status, env.Error)
		}
	}
	status, env = call(t, http.MethodGet, fmt.Sprintf("%s/hotels/%d", api, hotel.ID), "", nil)
	if status != http.StatusOK {
		t.Fatalf("get hotel: %d", status)
	}
	var got domain.Hotel
	_ = json.Unmarshal(env.Data, &got)
	if got.AverageCost == nil || *got.AverageCost != 130 {
		t.Fatalf("averageCost = %v", got.AverageCost)
	}
	if !mr.Exists(fmt.Sprintf("hotel:%d", hotel.ID)) {
		t.Fatalf("hotel should be cached after GET")
	}

	// radius
	status, env = call(t, http.MethodGet, api+"/hotels/radius/02108/10", "", nil)
	if status != http.StatusOK || env.Count == nil || *env.Count != 1 {
		t.Fatalf("radius: %d %+v", status, env)
	}
	if !mr.Exists("geocode:02108") {
		t.Fatalf("geocode result should be cached")
	}

	// filtered room listing joins the hotel summary
	status, env = call(t, http.MethodGet, api+"/rooms?cost[gt]=100&select=cost,hotelInfo", "", nil)
	if status != http.StatusOK || env.Count == nil || *env.Count != 1 {
		t.Fatalf("rooms filter: %d %+v", status, env)
	}
	var rooms []map[string]json.RawMessage
	_ = json.Unmarshal(env.Data, &rooms)
	if _, ok := rooms[0]["hotelInfo"]; !ok {
		t.Fatalf("expected hotelInfo in %v", rooms[0])
	}

	// reviews
	status, env = call(t, http.MethodPost, fmt.Sprintf("%s/hotels/%d/reviews", api, hotel.ID), guestTok,
		map[string]any{"title": "Great", "text": "Would stay again", "rating": 9})
	if status != http.StatusCreated {
		t.Fatalf("add review: %d %s", status, env.Error)
	}
	status, _ = call(t, http.MethodPost, fmt.Sprintf("%s/hotels/%d/reviews", api, hotel.ID), guestTok,
		map[string]any{"title": "Again", "text": "x", "rating": 1})
	if status != http.StatusBadRequest {
		t.Fatalf("second review: want 400, got %d", status)
	}

	// guests cannot touch hotels
	status, _ = call(t, http.MethodDelete, fmt.Sprintf("%s/hotels/%d", api, hotel.ID), guestTok, nil)
	if status != http.StatusForbidden {
		t.Fatalf("guest delete: want 403, got %d", status)
	}

	// cascade
	status, env = call(t, http.MethodDelete, fmt.Sprintf("%s/hotels/%d", api, hotel.ID), pubTok, nil)
	if status != http.StatusOK {
		t.Fatalf("delete hotel: %d %s", status, env.Error)
	}
	status, env = call(t, http.MethodGet, api+"/rooms", "", nil)
	if status != http.StatusOK || *env.Count != 0 {
		t.Fatalf("rooms after cascade: %d %+v", status, env)
	}
	status, _ = call(t, http.MethodGet, fmt.Sprintf("%s/hotels/%d", api, hotel.ID), "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("deleted hotel: want 404, got %d", status)
	}
}
