package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phenrril/psucalc/internal/adapters/repo/gormrepo"
	"github.com/phenrril/psucalc/internal/adapters/specsheet"
	"github.com/phenrril/psucalc/internal/adapters/spreadsheet"
	"github.com/phenrril/psucalc/internal/domain"
	"github.com/phenrril/psucalc/internal/usecase"
)

type fixture struct {
	h       http.Handler
	catalog *usecase.CatalogUC
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	db, err := gormrepo.Open(gormrepo.DriverSQLite, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.AutoMigrate(&domain.Component{}, &domain.SavedConfig{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	configs := gormrepo.NewConfigRepo(db)
	cat := &usecase.CatalogUC{Components: gormrepo.NewComponentRepo(db)}
	ctx := context.Background()
	for _, c := range []domain.Component{
		{Category: domain.CategoryCPU, Name: "Ryzen 5 5600X", Power: "65W"},
		{Category: domain.CategoryGPU, Name: "RTX 3070", Power: "220W"},
		{Category: domain.CategoryRAM, Name: "DDR4 16GB 3200", Power: "10W"},
		{Category: domain.CategoryStorage, Name: "Samsung 970 EVO", Power: "5W", Type: "ssd"},
		{Category: domain.CategoryCooling, Name: "Noctua NH-D15", Power: "5"},
		{Category: domain.CategoryMotherboard, Name: "B550 Tomahawk", Power: "25"},
		{Category: domain.CategoryPSU, Name: "RM850", Power: "850"},
		{Category: domain.CategoryPSU, Name: "CX650", Power: "650"},
		{Category: domain.CategoryPSU, Name: "RM750", Power: "750"},
	} {
		c := c
		if err := cat.Create(ctx, &c); err != nil {
			t.Fatalf("seed %s: %v", c.Name, err)
		}
	}
	h := New(cat,
		&usecase.EstimateUC{Catalog: cat, Configs: configs},
		&usecase.ConfigUC{Configs: configs},
		opts,
	)
	return fixture{h: h, catalog: cat}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func (f fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestIndexAndHealth(t *testing.T) {
	f := newFixture(t, Options{Ping: func(context.Context) error { return nil }})
	rec, resp := f.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("index: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = f.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}

	down := newFixture(t, Options{Ping: func(context.Context) error { return errors.New("gone") }})
	rec, _ = down.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "unhealthy") {
		t.Fatalf("expected 503, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestComponentEndpoints(t *testing.T) {
	f := newFixture(t, Options{})

	rec, resp := f.do(t, http.MethodGet, "/psus/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var psus []map[string]any
	json.Unmarshal(resp.Data, &psus)
	if len(psus) != 3 || psus[0]["name"] != "RM850" || psus[0]["wattage"] != "850" {
		t.Fatalf("unexpected psus: %v", psus)
	}

	rec, resp = f.do(t, http.MethodGet, "/gpus/rtx", "")
	if rec.Code != http.StatusOK || !strings.Contains(string(resp.Data), "RTX 3070") {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	rec, resp = f.do(t, http.MethodGet, "/gpus/radeon", "")
	if rec.Code != http.StatusNotFound || resp.Success {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodGet, "/keyboards/", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d", rec.Code)
	}

	rec, _ = f.do(t, http.MethodPost, "/drives/", `{"name":"DVD-RW/CD","consumption":15}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = f.do(t, http.MethodPost, "/drives/", `{"name":"DVD-RW/CD","consumption":"15"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodPost, "/drives/", `{"consumption":"15"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", rec.Code)
	}

	rec, resp = f.do(t, http.MethodPut, "/drives/DVD-RW/CD", `{"consumption":"18W"}`)
	if rec.Code != http.StatusOK || !strings.Contains(string(resp.Data), `"18W"`) {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = f.do(t, http.MethodDelete, "/drives/DVD-RW/CD", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodDelete, "/drives/DVD-RW/CD", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestEstimateEndpoint(t *testing.T) {
	f := newFixture(t, Options{})
	body := `{"cpu":"Ryzen 5 5600X","gpu":"RTX 3070","ram":"DDR4 16GB 3200","ram_modules":2,
		"storages":["Samsung 970 EVO"],"cooling":"Noctua NH-D15","motherboard":"B550 Tomahawk",
		"power_margin":20,"save":true,"name":"Gaming"}`
	rec, resp := f.do(t, http.MethodPost, "/estimate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("estimate: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Required  int `json:"required"`
		Breakdown struct {
			RawTotal int `json:"raw_total"`
			RAM      int `json:"ram_w"`
		} `json:"breakdown"`
		PSUs []struct {
			Name    string `json:"name"`
			Wattage int    `json:"wattage"`
		} `json:"psus"`
		Message string `json:"message"`
		Config  struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Watts int    `json:"watts"`
		} `json:"config"`
	}
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Required != 648 || out.Breakdown.RawTotal != 540 || out.Breakdown.RAM != 20 {
		t.Fatalf("unexpected totals: %+v", out)
	}
	if len(out.PSUs) != 3 || out.PSUs[0].Name != "CX650" || out.PSUs[2].Name != "RM850" || out.Message != "" {
		t.Fatalf("unexpected shortlist: %+v", out.PSUs)
	}
	if out.Config.ID == "" || out.Config.Name != "Gaming" || out.Config.Watts != 648 {
		t.Fatalf("expected a saved config: %+v", out.Config)
	}

	rec, resp = f.do(t, http.MethodGet, "/configs?q=gaming", "")
	if rec.Code != http.StatusOK || !strings.Contains(string(resp.Data), out.Config.ID) {
		t.Fatalf("configs list: %d %s", rec.Code, rec.Body.String())
	}
}

func TestEstimateWithoutPSUAndValidation(t *testing.T) {
	f := newFixture(t, Options{})
	rec, resp := f.do(t, http.MethodPost, "/estimate", `{"gpu":"RTX 3070","cpu":"Ryzen","ram":"DDR4","ram_modules":4,"power_margin":50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("estimate: %d", rec.Code)
	}
	// 220 + 65 + 40 + 200 = 525, +50% = 788 -> 850 only
	if !strings.Contains(string(resp.Data), `"required":788`) || !strings.Contains(string(resp.Data), "RM850") {
		t.Fatalf("unexpected data: %s", resp.Data)
	}

	f.catalog.Delete(context.Background(), domain.CategoryPSU, "RM850")
	_, resp = f.do(t, http.MethodPost, "/estimate", `{"gpu":"RTX 3070","cpu":"Ryzen","ram":"DDR4","ram_modules":4,"power_margin":50}`)
	if !strings.Contains(string(resp.Data), noPSUMessage) || !strings.Contains(string(resp.Data), `"psus":[]`) {
		t.Fatalf("expected empty shortlist message: %s", resp.Data)
	}

	rec, resp = f.do(t, http.MethodPost, "/estimate", `{"power_margin":5,"ram_modules":9}`)
	if rec.Code != http.StatusBadRequest || resp.Success {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(string(resp.Details), "power_margin") || !strings.Contains(string(resp.Details), "ram_modules") {
		t.Fatalf("expected field details: %s", resp.Details)
	}
	rec, _ = f.do(t, http.MethodPost, "/estimate", `{"cpu":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on bad json, got %d", rec.Code)
	}
}

func TestConfigEndpoints(t *testing.T) {
	f := newFixture(t, Options{})
	rec, resp := f.do(t, http.MethodPost, "/configs", `{"name":"Office","cpu":"Core i3","watts":300,"power_margin":20}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var c domain.SavedConfig
	json.Unmarshal(resp.Data, &c)

	rec, _ = f.do(t, http.MethodPatch, "/configs/"+c.ID.String(), `{"name":"Home office"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodPatch, "/configs/"+c.ID.String(), `{"name":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on blank name, got %d", rec.Code)
	}
	rec, resp = f.do(t, http.MethodGet, "/configs/"+c.ID.String(), "")
	if rec.Code != http.StatusOK || !strings.Contains(string(resp.Data), "Home office") {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}
	rec, _ = f.do(t, http.MethodGet, "/configs/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodDelete, "/configs/"+c.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodGet, "/configs/"+c.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAdminTokenAndXLSX(t *testing.T) {
	f := newFixture(t, Options{AdminToken: "s3cret"})

	rec, _ := f.do(t, http.MethodGet, "/admin/export.xlsx", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec, _ = f.do(t, http.MethodPost, "/gpus/", `{"name":"x"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("catalog writes must be guarded, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/export.xlsx", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	rows, _, err := spreadsheet.Read(bytes.NewReader(rec.Body.Bytes()))
	if err != nil || len(rows) != 9 {
		t.Fatalf("exported workbook: %v (%d rows)", err, len(rows))
	}

	rows[0].Power = "105W"
	rows = append(rows, domain.Component{Category: domain.CategoryGPU, Name: "RX 7600", Power: "165W"})
	var wb bytes.Buffer
	if err := spreadsheet.Write(&wb, rows); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, _ := mw.CreateFormFile("file", "catalog.xlsx")
	fw.Write(wb.Bytes())
	mw.Close()

	req = httptest.NewRequest(http.MethodPost, "/admin/import", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Admin-Token", "s3cret")
	rec = httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: %d %s", rec.Code, rec.Body.String())
	}
	var resp apiResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	var rep usecase.ImportReport
	json.Unmarshal(resp.Data, &rep)
	if rep.Created != 1 || rep.Updated != 9 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	cpu, err := f.catalog.Get(context.Background(), domain.CategoryCPU, "Ryzen 5 5600X")
	if err != nil || cpu.Power != "105W" {
		t.Fatalf("import did not update: %v %+v", err, cpu)
	}
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, Options{RateLimitRPS: 1})
	var limited bool
	for i := 0; i < 5; i++ {
		rec, _ := f.do(t, http.MethodGet, "/", "")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected a 429 within the burst window")
	}
}

func TestGzip(t *testing.T) {
	f := newFixture(t, Options{})
	req := httptest.NewRequest(http.MethodGet, "/psus/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding")
	}
}

func TestAdminRoutesClosedWithoutToken(t *testing.T) {
	f := newFixture(t, Options{})
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/admin/export.xlsx", ""},
		{http.MethodPost, "/admin/import", ""},
		{http.MethodPost, "/admin/enrich", `{"category":"gpus","name":"RTX 3070","url":"http://169.254.169.254/"}`},
	} {
		rec, resp := f.do(t, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusForbidden || resp.Success {
			t.Fatalf("%s %s: expected 403, got %d", tc.method, tc.path, rec.Code)
		}
	}
	// catalog writes stay open for the loopback-only local mode
	rec, _ := f.do(t, http.MethodPost, "/drives/", `{"name":"Blu-ray","consumption":"25"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create without token: %d", rec.Code)
	}
}

func TestEnrichEndpoint(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rtx3070":
			w.Write([]byte(`<table><tr><th>Memory</th><td>8 GB</td></tr><tr><th>TDP</th><td>230 W</td></tr></table>`))
		case "/blank":
			w.Write([]byte(`<p>out of stock</p>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer pages.Close()

	f := newFixture(t, Options{AdminToken: "s3cret"})
	f.catalog.Specs = specsheet.NewWithClient(pages.Client())

	enrich := func(body string) (*httptest.ResponseRecorder, apiResponse) {
		req := httptest.NewRequest(http.MethodPost, "/admin/enrich", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer s3cret")
		rec := httptest.NewRecorder()
		f.h.ServeHTTP(rec, req)
		var resp apiResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec, resp
	}

	rec, resp := enrich(`{"category":"gpus","name":"RTX 3070","url":"` + pages.URL + `/rtx3070"}`)
	if rec.Code != http.StatusOK || !strings.Contains(string(resp.Data), `"230 W"`) {
		t.Fatalf("enrich: %d %s", rec.Code, rec.Body.String())
	}
	gpu, err := f.catalog.Get(context.Background(), domain.CategoryGPU, "RTX 3070")
	if err != nil || gpu.Power != "230 W" {
		t.Fatalf("power not stored: %v %+v", err, gpu)
	}

	cases := []struct {
		body string
		code int
	}{
		{`{"category":"keyboards","name":"RTX 3070","url":"` + pages.URL + `/rtx3070"}`, http.StatusBadRequest},
		{`{"category":"gpus","name":"RTX 3070","url":"  "}`, http.StatusBadRequest},
		{`{"category":"gpus","name":"RTX 3070","url":"` + pages.URL + `/blank"}`, http.StatusNotFound},
		{`{"category":"gpus","name":"RX 9070","url":"` + pages.URL + `/rtx3070"}`, http.StatusNotFound},
		{`{"category":`, http.StatusBadRequest},
	}
	for _, c := range cases {
		if rec, _ := enrich(c.body); rec.Code != c.code {
			t.Fatalf("%s: expected %d, got %d %s", c.body, c.code, rec.Code, rec.Body.String())
		}
	}
}
