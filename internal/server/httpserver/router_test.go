package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/jobboard-go/internal/core/service"
	"github.com/yndnr/jobboard-go/internal/server/httpserver/handler"
	"github.com/yndnr/jobboard-go/internal/storage/memory"
	"github.com/yndnr/jobboard-go/internal/telemetry/metric"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	metrics *metric.Registry
	store   *memory.Store
}

func newTestServer(t *testing.T, gateStatusUpdates bool) *testServer {
	t.Helper()
	metrics := metric.NewRegistry()
	tokens := newTestTokens(t, &service.TokenServiceConfig{Observer: metrics})
	store := memory.New()
	jobs := service.NewJobService(store, 0)
	apps := service.NewApplicationService(store, jobs, &service.ApplicationServiceConfig{
		GateStatusUpdates: gateStatusUpdates,
		Observer:          metrics,
	})
	base, _ := newBufferLogger(t)

	h := NewRouter(&RouterConfig{
		Handler: handler.New(handler.Config{
			Tokens:       tokens,
			Jobs:         jobs,
			Applications: apps,
		}),
		Tokens:            tokens,
		Metrics:           metrics,
		MetricsPath:       "/metrics",
		Logger:            base,
		CORSOrigins:       []string{"http://localhost:5173"},
		GateStatusUpdates: gateStatusUpdates,
	})
	return &testServer{t: t, handler: h, metrics: metrics, store: store}
}

func (s *testServer) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(email string) *http.Cookie {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/jwt", `{"email":"`+email+`"}`, nil)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login status = %d, body %s", rec.Code, rec.Body)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == handler.SessionCookie {
			return c
		}
	}
	s.t.Fatal("login did not set the session cookie")
	return nil
}

func (s *testServer) insert(path, body string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, path, body, nil)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("POST %s status = %d, body %s", path, rec.Code, rec.Body)
	}
	var res handler.InsertResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		s.t.Fatal(err)
	}
	return res.InsertedID
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRouter_Greeting(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "Hello World!" {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("every response carries X-Request-ID")
	}

	if rec := s.do(http.MethodGet, "/nope", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", rec.Code)
	}
}

func TestRouter_PrivateListingRejectsUniformly(t *testing.T) {
	s := newTestServer(t, false)
	valid := s.login("a@x.com")

	none := s.do(http.MethodGet, "/job-applications?email=a@x.com", "", nil)
	corrupt := s.do(http.MethodGet, "/job-applications?email=a@x.com", "",
		&http.Cookie{Name: handler.SessionCookie, Value: tamper(valid.Value)})

	for name, rec := range map[string]*httptest.ResponseRecorder{"no cookie": none, "corrupt": corrupt} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
		if rec.Header().Get("X-Error-Code") != "JB-AUTH-4010" {
			t.Errorf("%s: X-Error-Code = %q", name, rec.Header().Get("X-Error-Code"))
		}
	}
	if none.Body.String() != corrupt.Body.String() {
		t.Errorf("bodies differ: %q vs %q", none.Body.String(), corrupt.Body.String())
	}

	scrape := s.do(http.MethodGet, "/metrics", "", nil).Body.String()
	if !strings.Contains(scrape, "jobboard_session_rejections_total 2") {
		t.Error("both rejections should be counted")
	}
}

func TestRouter_PrivateListingOwnership(t *testing.T) {
	s := newTestServer(t, false)
	jobID := s.insert("/jobs", `{"title":"Engineer","company":"Acme","hr_email":"hr@acme.com"}`)
	for _, email := range []string{"a@x.com", "b@x.com", "a@x.com"} {
		s.insert("/job-applications", `{"job_id":"`+jobID+`","application_email":"`+email+`"}`)
	}
	cookie := s.login("a@x.com")

	rec := s.do(http.MethodGet, "/job-applications?email=b@x.com", "", cookie)
	if rec.Code != http.StatusForbidden {
		t.Errorf("other principal status = %d, want 403", rec.Code)
	}

	rec = s.do(http.MethodGet, "/job-applications?email=a@x.com", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("own listing status = %d, body %s", rec.Code, rec.Body)
	}
	apps := decodeList(t, rec)
	if len(apps) != 2 {
		t.Fatalf("own listing = %d applications, want 2", len(apps))
	}
	for _, app := range apps {
		if app["application_email"] != "a@x.com" {
			t.Errorf("foreign application leaked: %v", app)
		}
		if app["title"] != "Engineer" || app["company"] != "Acme" {
			t.Errorf("application not enriched with job fields: %v", app)
		}
	}

	if rec := s.do(http.MethodGet, "/job-applications", "", cookie); rec.Code != http.StatusBadRequest {
		t.Errorf("missing email status = %d, want 400", rec.Code)
	}
}

func TestRouter_SubmitCountsApplication(t *testing.T) {
	s := newTestServer(t, false)
	jobID := s.insert("/jobs", `{"title":"Engineer","hr_email":"hr@acme.com","applicationCount":7}`)

	s.insert("/job-applications", `{"job_id":"`+jobID+`","application_email":"a@x.com"}`)
	s.insert("/job-applications", `{"job_id":"`+jobID+`","application_email":"b@x.com"}`)

	rec := s.do(http.MethodGet, "/jobs/"+jobID, "", nil)
	var job map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&job); err != nil {
		t.Fatal(err)
	}
	if job["applicationCount"] != float64(2) {
		t.Errorf("applicationCount = %v, want 2", job["applicationCount"])
	}

	rec = s.do(http.MethodGet, "/job-applications/jobs/"+jobID, "", nil)
	if apps := decodeList(t, rec); len(apps) != 2 {
		t.Errorf("applications for job = %d, want 2", len(apps))
	}
}

func TestRouter_SubmitForMissingJob(t *testing.T) {
	s := newTestServer(t, false)

	rec := s.do(http.MethodPost, "/job-applications", `{"job_id":"missing","application_email":"a@x.com"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if n := s.store.Count("jobApplications"); n != 0 {
		t.Errorf("%d orphan applications left behind", n)
	}
}

func TestRouter_ListJobsByPoster(t *testing.T) {
	s := newTestServer(t, false)
	s.insert("/jobs", `{"title":"A","hr_email":"hr@acme.com"}`)
	s.insert("/jobs", `{"title":"B","hr_email":"hr@other.com"}`)

	if all := decodeList(t, s.do(http.MethodGet, "/jobs", "", nil)); len(all) != 2 {
		t.Errorf("GET /jobs = %d, want 2", len(all))
	}
	mine := decodeList(t, s.do(http.MethodGet, "/jobs?email=hr@acme.com", "", nil))
	if len(mine) != 1 || mine[0]["title"] != "A" {
		t.Errorf("GET /jobs?email = %v", mine)
	}
}

func TestRouter_StatusUpdate(t *testing.T) {
	for _, gated := range []bool{false, true} {
		t.Run(map[bool]string{false: "public", true: "gated"}[gated], func(t *testing.T) {
			s := newTestServer(t, gated)
			jobID := s.insert("/jobs", `{"title":"Engineer","hr_email":"hr@acme.com"}`)
			appID := s.insert("/job-applications", `{"job_id":"`+jobID+`","application_email":"a@x.com"}`)

			anon := s.do(http.MethodPatch, "/job-applications/"+appID, `{"status":"Hired"}`, nil)
			if gated && anon.Code != http.StatusUnauthorized {
				t.Errorf("anonymous update status = %d, want 401", anon.Code)
			}
			if !gated {
				var res handler.UpdateResult
				if anon.Code != http.StatusOK {
					t.Errorf("anonymous update status = %d, want 200", anon.Code)
				} else if err := json.NewDecoder(anon.Body).Decode(&res); err != nil || !res.Acknowledged || res.ModifiedCount != 1 {
					t.Errorf("UpdateResult = %+v, %v", res, err)
				}
			}

			if gated {
				rec := s.do(http.MethodPatch, "/job-applications/"+appID, `{"status":"Hired"}`, s.login("c@x.com"))
				if rec.Code != http.StatusForbidden {
					t.Errorf("stranger update status = %d, want 403", rec.Code)
				}
				rec = s.do(http.MethodPatch, "/job-applications/"+appID, `{"status":"Hired"}`, s.login("hr@acme.com"))
				if rec.Code != http.StatusOK {
					t.Errorf("poster update status = %d, want 200", rec.Code)
				}
			}

			rec := s.do(http.MethodPatch, "/job-applications/missing", `{"status":"Hired"}`, s.login("a@x.com"))
			if rec.Code != http.StatusNotFound {
				t.Errorf("missing application status = %d, want 404", rec.Code)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/job-applications", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("preflight must allow credentials")
	}
}

func TestRouter_MetricsRecordRoutePattern(t *testing.T) {
	s := newTestServer(t, false)
	s.do(http.MethodGet, "/jobs/abc", "", nil)

	scrape := s.do(http.MethodGet, "/metrics", "", nil).Body.String()
	if !strings.Contains(scrape, `route="GET /jobs/{id}"`) {
		t.Error("requests should be labelled with the route pattern, not the path")
	}
}

func TestRouter_HandleRequiresGate(t *testing.T) {
	rt := newRouter(newTestTokens(t, nil), nil)

	defer func() {
		if recover() == nil {
			t.Error("registering a route without a gate should panic")
		}
	}()
	rt.HandleFunc("GET /x", 0, func(http.ResponseWriter, *http.Request) {})
}

func TestRouter_Routes(t *testing.T) {
	rt := newRouter(newTestTokens(t, nil), nil)
	rt.HandleFunc("GET /a", GatePublic, func(http.ResponseWriter, *http.Request) {})
	rt.HandleFunc("GET /b", GateSession, func(http.ResponseWriter, *http.Request) {})

	routes := rt.Routes()
	if routes["GET /a"] != GatePublic || routes["GET /b"] != GateSession {
		t.Errorf("Routes() = %v", routes)
	}
	if GateSession.String() != "session" || Gate(0).String() != "Gate(0)" {
		t.Error("Gate.String mismatch")
	}
}
