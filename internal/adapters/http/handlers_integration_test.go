//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/geoext/internal/adapters/http"
	"github.com/samirrijal/geoext/internal/adapters/postgres"
	"github.com/samirrijal/geoext/internal/core/usecases"
	"github.com/samirrijal/geoext/internal/pkg/config"
)

// setupTestDB connects to the database configured through GEOEXT_* variables
// and brings its schema up to date.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	cfg, err := config.Load("geoext-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 4)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if _, err := db.Migrate(ctx, "../../../migrations"); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// setupTestDeps wires the real repository without cache or broker.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	t.Helper()
	features := usecases.NewFeatureService(postgres.NewFeatureRepo(db), nil, nil, usecases.DefaultFeatureServiceConfig())
	if _, err := features.Warm(context.Background()); err != nil {
		t.Fatalf("warm index: %v", err)
	}
	return &http.Dependencies{
		Geometry: usecases.NewGeometryService(),
		Features: features,
		DB:       db,
	}
}

// uniqueName keeps parallel runs against a shared database apart.
func uniqueName(prefix string) string {
	return prefix + "_" + time.Now().Format("20060102150405.000000")
}

func TestFeatureRoundTrip_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(t, db))

	name := uniqueName("integ_square")
	f := createFeature(t, app, name, "SRID=3857;POLYGON((0 0, 10 0, 10 10, 0 10, 0 0))")
	defer doJSON(t, app, "DELETE", "/v1/features/"+f.ID, "")

	if f.SRID != 3857 {
		t.Errorf("expected SRID 3857, got %d", f.SRID)
	}

	status, body := doJSON(t, app, "GET", "/v1/features/"+f.ID, "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var got http.FeatureResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Name != name || got.WKT != f.WKT {
		t.Errorf("stored feature differs: %+v vs %+v", got, f)
	}
}

func TestFeatureList_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(t, db))

	a := createFeature(t, app, uniqueName("integ_a"), "POINT(1 1)")
	b := createFeature(t, app, uniqueName("integ_b"), "POINT(2 2)")
	defer doJSON(t, app, "DELETE", "/v1/features/"+a.ID, "")
	defer doJSON(t, app, "DELETE", "/v1/features/"+b.ID, "")

	req := httptest.NewRequest("GET", "/v1/features?limit=100", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []http.FeatureResponse `json:"data"`
		Pagination struct{ Total int }    `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Pagination.Total < 2 {
		t.Errorf("expected at least 2 features, got %d", result.Pagination.Total)
	}
}

func TestContaining_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Close()
	app := setupApp(setupTestDeps(t, db))

	name := uniqueName("integ_zone")
	f := createFeature(t, app, name, "POLYGON((1000 1000, 1010 1000, 1010 1010, 1000 1010, 1000 1000))")
	defer doJSON(t, app, "DELETE", "/v1/features/"+f.ID, "")

	// A fresh service must see the feature through Warm.
	app = setupApp(setupTestDeps(t, db))

	status, body := doJSON(t, app, "GET", "/v1/features/containing?point=POINT(1005%201005)&limit=100", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if !strings.Contains(string(body), name) {
		t.Errorf("expected %s among containing features: %s", name, body)
	}
}
