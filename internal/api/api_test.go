package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/session"
	"github.com/CiaoHost/CiaoHostBookingAI-sub001/internal/store"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	t      *testing.T
	router *gin.Engine
	sessID string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	sessions := session.NewStore(time.Minute, 100)
	t.Cleanup(sessions.Stop)
	srv := New(Options{Store: st, Sessions: sessions, Currency: "EUR", Seed: 11})
	t.Cleanup(srv.charts.Stop)
	return &harness{t: t, router: srv.Router()}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			h.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.send(req)
}

func (h *harness) send(req *http.Request) *httptest.ResponseRecorder {
	if h.sessID != "" {
		req.Header.Set(SessionHeader, h.sessID)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	if id := w.Header().Get(SessionHeader); id != "" {
		h.sessID = id
	}
	return w
}

func (h *harness) expect(w *httptest.ResponseRecorder, code int) {
	h.t.Helper()
	if w.Code != code {
		h.t.Fatalf("status %d, want %d: %s", w.Code, code, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (h *harness) createProperty() store.Property {
	w := h.do(http.MethodPost, "/api/properties", map[string]any{
		"name": "Villa Rosa", "address": "Via Roma 1", "city": "Bellagio",
		"bedrooms": 3, "bathrooms": 2, "max_guests": 6, "base_price": 200,
		"amenities": []string{"pool", "wifi"},
	})
	h.expect(w, http.StatusCreated)
	return decode[store.Property](h.t, w)
}

func TestPropertyEndpoints(t *testing.T) {
	h := newHarness(t)
	p := h.createProperty()
	if p.ID == "" || p.CurrentPrice != 200 || p.Status != store.StatusActive {
		t.Fatalf("created: %+v", p)
	}

	w := h.do(http.MethodPut, "/api/properties/"+p.ID, map[string]any{"current_price": 230})
	h.expect(w, http.StatusOK)
	if up := decode[store.Property](t, w); up.CurrentPrice != 230 || up.Name != "Villa Rosa" {
		t.Fatalf("partial update lost fields: %+v", up)
	}

	h.expect(h.do(http.MethodPost, "/api/properties", map[string]any{"name": "x"}), http.StatusBadRequest)
	h.expect(h.do(http.MethodGet, "/api/properties/nope", nil), http.StatusNotFound)

	w = h.do(http.MethodGet, "/api/properties?status=active", nil)
	h.expect(w, http.StatusOK)
	if list := decode[[]store.Property](t, w); len(list) != 1 {
		t.Fatalf("list = %d", len(list))
	}
	h.expect(h.do(http.MethodDelete, "/api/properties/"+p.ID, nil), http.StatusOK)
	h.expect(h.do(http.MethodGet, "/api/properties/"+p.ID, nil), http.StatusNotFound)
}

func TestSeasonEndpoints(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, "/api/seasons/defaults?year=2024", nil)
	h.expect(w, http.StatusOK)
	if list := decode[[]store.Season](t, w); len(list) != 6 || list[0].ID == "" {
		t.Fatalf("defaults: %+v", list)
	}
	h.expect(h.do(http.MethodPost, "/api/seasons", map[string]any{
		"name": "holiday", "start_date": "2024-08-10", "end_date": "2024-08-20", "price_modifier": 40,
	}), http.StatusConflict)

	w = h.do(http.MethodGet, "/api/seasons/lookup?date=2024-12-24", nil)
	h.expect(w, http.StatusOK)
	got := decode[struct {
		Season *store.Season `json:"season"`
		Factor float64       `json:"factor"`
	}](t, w)
	if got.Season == nil || got.Season.Name != "holiday" || got.Factor != 1.25*0.90 {
		t.Fatalf("lookup: %+v", got)
	}
	h.expect(h.do(http.MethodGet, "/api/seasons/lookup?date=bad", nil), http.StatusBadRequest)
}

func TestBookingAndPricingEndpoints(t *testing.T) {
	h := newHarness(t)
	p := h.createProperty()
	h.expect(h.do(http.MethodPost, "/api/seasons/defaults?year=2024", nil), http.StatusOK)

	w := h.do(http.MethodPost, "/api/properties/"+p.ID+"/pricing/generate", map[string]any{"from": "2024-07-01", "days": 14})
	h.expect(w, http.StatusOK)
	gen := decode[struct {
		Days []store.PricingDay `json:"days"`
	}](t, w)
	if len(gen.Days) != 14 {
		t.Fatalf("days = %d", len(gen.Days))
	}

	w = h.do(http.MethodPost, "/api/bookings", map[string]any{
		"property_id": p.ID, "guest_name": "Anna", "guests": 2,
		"check_in": "2024-07-01", "check_out": "2024-07-03",
	})
	h.expect(w, http.StatusCreated)
	b := decode[store.Booking](t, w)
	want := gen.Days[0].Price + gen.Days[1].Price
	if fmt.Sprintf("%.2f", b.TotalPrice) != fmt.Sprintf("%.2f", want) {
		t.Fatalf("quoted %.2f, want %.2f", b.TotalPrice, want)
	}
	h.expect(h.do(http.MethodPost, "/api/bookings", map[string]any{
		"property_id": p.ID, "guest_name": "Bob", "guests": 2,
		"check_in": "2024-07-02", "check_out": "2024-07-04",
	}), http.StatusConflict)
	h.expect(h.do(http.MethodPost, "/api/bookings", map[string]any{
		"property_id": p.ID, "guest_name": "No arrival", "guests": 2,
		"check_out": "9999-12-31",
	}), http.StatusBadRequest)
	h.expect(h.do(http.MethodPost, "/api/bookings", map[string]any{
		"property_id": p.ID, "guest_name": "Big group", "guests": 12,
		"check_in": "2024-07-10", "check_out": "2024-07-12",
	}), http.StatusBadRequest)

	// Regenerating marks the booked nights.
	w = h.do(http.MethodPost, "/api/properties/"+p.ID+"/pricing/generate", map[string]any{"from": "2024-07-01", "days": 14})
	h.expect(w, http.StatusOK)
	w = h.do(http.MethodGet, "/api/properties/"+p.ID+"/pricing", nil)
	h.expect(w, http.StatusOK)
	cal := decode[struct {
		Days  []store.PricingDay `json:"days"`
		Stats struct {
			Booked int `json:"booked"`
		} `json:"stats"`
	}](t, w)
	if cal.Days[0].Status != store.DayBooked || cal.Stats.Booked != 2 {
		t.Fatalf("calendar: %+v", cal.Stats)
	}

	h.expect(h.do(http.MethodPost, "/api/bookings/"+b.ID+"/cancel", nil), http.StatusOK)

	w = h.do(http.MethodGet, "/api/properties/"+p.ID+"/pricing/recommend?date=2024-08-03", nil)
	h.expect(w, http.StatusOK)
	rec := decode[map[string]any](t, w)
	if rec["source"] != "simulated" || rec["season"] != "high" {
		t.Fatalf("recommendation: %v", rec)
	}
	w = h.do(http.MethodGet, "/api/properties/"+p.ID+"/market?n=5", nil)
	h.expect(w, http.StatusOK)
	if m := decode[map[string]any](t, w); len(m["competitors"].([]any)) != 5 {
		t.Fatalf("market: %v", m)
	}
}

const staysCSV = `date;property;price;guests
2024-07-01;Villa Rosa;300,00;6
2024-07-02;Casa Blu;110,50;2
2024-07-03;Loft;140,00;3
2024-07-04;Villa Rosa;320,00;6
2024-07-05;Casa Blu;115,00;2
2024-07-06;Loft;150,00;4
2024-07-07;Villa Rosa;310,00;5
2024-07-08;Casa Blu;990,00;2
`

func (h *harness) upload(name, filename, data string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		h.t.Fatal(err)
	}
	_, _ = fw.Write([]byte(data))
	_ = mw.WriteField("name", name)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.send(req)
}

func TestDatasetAndChartEndpoints(t *testing.T) {
	h := newHarness(t)
	w := h.upload("stays", "stays.csv", staysCSV)
	h.expect(w, http.StatusCreated)
	sess := h.sessID
	if sess == "" {
		t.Fatalf("no session header")
	}

	w = h.do(http.MethodGet, "/api/datasets/stays/column-types", nil)
	h.expect(w, http.StatusOK)
	types := decode[map[string][]string](t, w)
	if strings.Join(types["numeric"], ",") != "price,guests" || strings.Join(types["datetime"], ",") != "date" {
		t.Fatalf("types: %v", types)
	}

	w = h.do(http.MethodPost, "/api/datasets/stays/filter", map[string]any{"filters": map[string]any{"price": []float64{100, 200}}})
	h.expect(w, http.StatusOK)
	if f := decode[map[string]any](t, w); f["matched"].(float64) != 4 {
		t.Fatalf("filter: %v", f)
	}
	h.expect(h.do(http.MethodPost, "/api/datasets/stays/filter", map[string]any{"filters": map[string]any{"property": []float64{1, 2}}}), http.StatusBadRequest)

	w = h.do(http.MethodGet, "/api/datasets/stays/anomalies?column=price", nil)
	h.expect(w, http.StatusOK)
	if a := decode[map[string]any](t, w); len(a["anomalies"].([]any)) != 1 {
		t.Fatalf("anomalies: %v", a)
	}

	req := map[string]any{"dataset": "stays", "chart_type": "bar", "config": map[string]any{"x": "property", "y": "price", "agg": "mean"}}
	w = h.do(http.MethodPost, "/api/charts", req)
	h.expect(w, http.StatusOK)
	if w.Header().Get("Content-Type") != "image/png" || !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected png, got %s", w.Header().Get("Content-Type"))
	}
	w = h.do(http.MethodPost, "/api/charts", req)
	if w.Header().Get("X-Cache") != "hit" {
		t.Fatalf("second render should hit the chart cache")
	}

	w = h.do(http.MethodPost, "/api/charts", map[string]any{"dataset": "stays", "chart_type": "pie", "config": map[string]any{}, "format": "svg"})
	h.expect(w, http.StatusOK)
	if w.Header().Get(ChartErrorHeader) == "" || !strings.Contains(w.Body.String(), "<svg") {
		t.Fatalf("placeholder expected")
	}
	h.expect(h.do(http.MethodPost, "/api/charts", map[string]any{"dataset": "missing", "chart_type": "bar"}), http.StatusNotFound)

	if h.sessID != sess {
		t.Fatalf("session id changed across requests")
	}
	h.sessID = ""
	h.expect(h.do(http.MethodGet, "/api/datasets/stays/column-types", nil), http.StatusNotFound)
}

func TestDashboardEndpoints(t *testing.T) {
	h := newHarness(t)
	h.expect(h.upload("stays", "stays.csv", staysCSV), http.StatusCreated)

	w := h.do(http.MethodPost, "/api/dashboard/panels", map[string]any{
		"title": "Mean price", "chart_type": "bar",
		"config":  map[string]any{"x": "property", "y": "price", "agg": "mean"},
		"filters": map[string]any{"guests": map[string]any{"min": 3}},
	})
	h.expect(w, http.StatusCreated)
	panel := decode[map[string]any](t, w)
	id := panel["id"].(string)

	w = h.do(http.MethodGet, "/api/dashboard/render?dataset=stays", nil)
	h.expect(w, http.StatusOK)
	r := decode[struct {
		Panels []struct {
			Rows     int    `json:"rows"`
			Error    string `json:"error"`
			ImageURL string `json:"image_url"`
		} `json:"panels"`
	}](t, w)
	if len(r.Panels) != 1 || r.Panels[0].Rows != 5 || r.Panels[0].Error != "" {
		t.Fatalf("render: %+v", r)
	}
	w = h.do(http.MethodGet, r.Panels[0].ImageURL+"&format=svg", nil)
	h.expect(w, http.StatusOK)
	if w.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("content type %s", w.Header().Get("Content-Type"))
	}

	h.expect(h.do(http.MethodPost, "/api/dashboards", map[string]any{"name": "july"}), http.StatusCreated)
	h.expect(h.do(http.MethodDelete, "/api/dashboard/panels/"+id, nil), http.StatusNoContent)
	h.expect(h.do(http.MethodDelete, "/api/dashboard/panels/"+id, nil), http.StatusNotFound)
	w = h.do(http.MethodPost, "/api/dashboards/july/load", nil)
	h.expect(w, http.StatusOK)
	if d := decode[map[string]any](t, w); len(d["panels"].([]any)) != 1 {
		t.Fatalf("loaded: %v", d)
	}
	h.expect(h.do(http.MethodPost, "/api/dashboards/august/load", nil), http.StatusNotFound)
}

func TestContentEndpoint(t *testing.T) {
	h := newHarness(t)
	p := h.createProperty()
	w := h.do(http.MethodPost, "/api/content", map[string]any{"kind": "welcome_message", "property_id": p.ID})
	h.expect(w, http.StatusOK)
	res := decode[map[string]any](t, w)
	if res["source"] != "simulated" || !strings.Contains(res["text"].(string), "Villa Rosa") {
		t.Fatalf("content: %v", res)
	}
	h.expect(h.do(http.MethodPost, "/api/content", map[string]any{"kind": "poem", "property_id": p.ID}), http.StatusBadRequest)
	h.expect(h.do(http.MethodPost, "/api/content", map[string]any{"kind": "poem"}), http.StatusBadRequest)
}

func TestRecommendConcurrent(t *testing.T) {
	h := newHarness(t)
	p := h.createProperty()
	path := "/api/properties/" + p.ID + "/pricing/recommend?date=2024-08-03"

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				req.Header.Set(SessionHeader, h.sessID)
				w := httptest.NewRecorder()
				h.router.ServeHTTP(w, req)
				if w.Code != http.StatusOK {
					errs <- fmt.Sprintf("status %d: %s", w.Code, w.Body.String())
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
