package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TrendAgent/pkg/database"
	"TrendAgent/pkg/model"
	"TrendAgent/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeStore struct {
	trend    *model.Trend
	children []*model.Trend
	series   []*model.TrendMetrics

	gotPlatform model.Platform
	gotLimit    int
	gotRegion   string
	gotFrom     time.Time
}

func (f *fakeStore) RecentByPlatform(ctx context.Context, p model.Platform, since time.Time, limit int) ([]*model.Content, error) {
	f.gotPlatform, f.gotLimit = p, limit
	return []*model.Content{{Platform: p, SourceURL: "https://reddit.com/x"}}, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Trend, error) {
	if f.trend == nil || f.trend.ID != id {
		return nil, fmt.Errorf("获取趋势失败: %w", database.ErrNotFound)
	}
	return f.trend, nil
}

func (f *fakeStore) Children(ctx context.Context, id uuid.UUID) ([]*model.Trend, error) {
	return f.children, nil
}

func (f *fakeStore) Series(ctx context.Context, id uuid.UUID, region string, from, to time.Time) ([]*model.TrendMetrics, error) {
	f.gotRegion, f.gotFrom = region, from
	return f.series, nil
}

func (f *fakeStore) Pending(ctx context.Context, limit int) ([]*model.Alert, error) {
	return []*model.Alert{{AlertType: model.AlertTypeNewTrend, Status: model.AlertStatusPending}}, nil
}

func (f *fakeStore) GetByDate(ctx context.Context, date time.Time) (*model.DailyReport, error) {
	return nil, fmt.Errorf("获取日报失败: %w", database.ErrNotFound)
}

func newTestServer(mon *monitor.Monitor, store *fakeStore) *Server {
	gin.SetMode(gin.TestMode)
	s := NewServer("0", time.Second, time.Second)
	s.SetupRoutes(NewHandlers(mon, store, store, store, store, store))
	return s
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: invalid json %q", path, w.Body.String())
	}
	return w, body
}

func TestHealthAndReady(t *testing.T) {
	mon := monitor.NewMonitor(nil)
	mon.UpdateStatus("Database", monitor.StatusUnhealthy, "refused")
	s := newTestServer(mon, &fakeStore{})

	if w, _ := get(t, s, "/health"); w.Code != http.StatusOK {
		t.Fatalf("/health = %d", w.Code)
	}
	if w, body := get(t, s, "/ready"); w.Code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Fatalf("/ready = %d %v", w.Code, body)
	}

	mon.UpdateStatus("Database", monitor.StatusHealthy, "")
	mon.UpdateStatus("Anthropic", monitor.StatusSkipped, "")
	if w, _ := get(t, s, "/ready"); w.Code != http.StatusOK {
		t.Fatalf("/ready after recovery = %d", w.Code)
	}
	w, body := get(t, s, "/api/v1/status")
	if w.Code != http.StatusOK || len(body["data"].([]interface{})) != 2 {
		t.Fatalf("/api/v1/status = %d %v", w.Code, body)
	}
}

func TestGetRecentContent(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(monitor.NewMonitor(nil), store)

	if w, _ := get(t, s, "/api/v1/content?platform=myspace"); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown platform = %d", w.Code)
	}
	if w, _ := get(t, s, "/api/v1/content?platform=reddit&since=yesterday"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad since = %d", w.Code)
	}
	if w, _ := get(t, s, "/api/v1/content?platform=reddit&limit=5000"); w.Code != http.StatusBadRequest {
		t.Fatalf("limit too large = %d", w.Code)
	}

	w, body := get(t, s, "/api/v1/content?platform=tiktok&limit=5&since=2024-01-01T00:00:00Z")
	if w.Code != http.StatusOK || len(body["data"].([]interface{})) != 1 {
		t.Fatalf("content = %d %v", w.Code, body)
	}
	if store.gotPlatform != model.PlatformTikTok || store.gotLimit != 5 {
		t.Fatalf("store called with %s %d", store.gotPlatform, store.gotLimit)
	}
}

func TestTrendRoutes(t *testing.T) {
	trend := &model.Trend{ID: uuid.New(), Name: "glass skin"}
	store := &fakeStore{
		trend:    trend,
		children: []*model.Trend{{ID: uuid.New(), Name: "rice water"}},
		series:   []*model.TrendMetrics{{TrendID: trend.ID, MentionCount: 10}},
	}
	s := newTestServer(monitor.NewMonitor(nil), store)

	if w, _ := get(t, s, "/api/v1/trends/not-a-uuid"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", w.Code)
	}
	if w, _ := get(t, s, "/api/v1/trends/"+uuid.NewString()); w.Code != http.StatusNotFound {
		t.Fatalf("missing trend = %d", w.Code)
	}
	if w, body := get(t, s, "/api/v1/trends/"+trend.ID.String()); w.Code != http.StatusOK || body["data"] == nil {
		t.Fatalf("trend = %d %v", w.Code, body)
	}

	w, body := get(t, s, "/api/v1/trends/"+trend.ID.String()+"/metrics?from=2024-01-01&to=2024-01-31&region=KR")
	if w.Code != http.StatusOK || len(body["data"].([]interface{})) != 1 {
		t.Fatalf("metrics = %d %v", w.Code, body)
	}
	if store.gotRegion != "KR" || !store.gotFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Series called with region=%s from=%v", store.gotRegion, store.gotFrom)
	}
	if w, _ := get(t, s, "/api/v1/trends/"+trend.ID.String()+"/metrics?from=2024-02-01&to=2024-01-01"); w.Code != http.StatusBadRequest {
		t.Fatalf("inverted range = %d", w.Code)
	}

	w, body = get(t, s, "/api/v1/trends/"+trend.ID.String()+"/children")
	if w.Code != http.StatusOK || len(body["data"].([]interface{})) != 1 {
		t.Fatalf("children = %d %v", w.Code, body)
	}
}

func TestAlertsAndReports(t *testing.T) {
	s := newTestServer(monitor.NewMonitor(nil), &fakeStore{})

	if w, body := get(t, s, "/api/v1/alerts/pending"); w.Code != http.StatusOK || len(body["data"].([]interface{})) != 1 {
		t.Fatalf("pending alerts = %d %v", w.Code, body)
	}
	if w, _ := get(t, s, "/api/v1/reports/2024-13-01"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date = %d", w.Code)
	}
	if w, _ := get(t, s, "/api/v1/reports/2024-06-01"); w.Code != http.StatusNotFound {
		t.Fatalf("missing report = %d", w.Code)
	}
}
