package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/filter"
	"github.com/keepson/keepson/internal/domain/search/hints"
	domsort "github.com/keepson/keepson/internal/domain/search/sort"
	healthuc "github.com/keepson/keepson/internal/usecase/health"
	recorduc "github.com/keepson/keepson/internal/usecase/record"
	searchuc "github.com/keepson/keepson/internal/usecase/search"
	usageuc "github.com/keepson/keepson/internal/usecase/usage"
)

// --- Mocks ---

type stubRepo struct {
	saved       []domrec.Record
	saveErr     error
	getResult   domrec.Record
	getErr      error
	deleteErr   error
	deleted     []string
	findResults []domrec.Record
	findErr     error
	countResult int
	countErr    error
	lastSkip    int
	lastLimit   int
}

func (m *stubRepo) Save(_ context.Context, rec *domrec.Record) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, *rec)
	return nil
}

func (m *stubRepo) Get(_ context.Context, _, _ string) (domrec.Record, error) {
	return m.getResult, m.getErr
}

func (m *stubRepo) Delete(_ context.Context, _, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *stubRepo) FindMatching(
	_ context.Context, _ filter.Filter, _ domsort.Sort, skip, limit int,
) ([]domrec.Record, error) {
	m.lastSkip, m.lastLimit = skip, limit
	return m.findResults, m.findErr
}

func (m *stubRepo) Count(_ context.Context, _ filter.Filter) (int, error) {
	return m.countResult, m.countErr
}

type readSeekNopCloser struct{ *strings.Reader }

func (readSeekNopCloser) Close() error { return nil }

type stubFiles struct {
	saveRef      string
	saveErr      error
	lastFilename string
	blob         string
	openErr      error
	deleted      []string
}

func (m *stubFiles) Save(_ context.Context, _, filename string, r io.Reader) (string, error) {
	m.lastFilename = filename
	if m.saveErr != nil {
		return "", m.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	return m.saveRef, nil
}

func (m *stubFiles) Open(_ context.Context, _, _ string) (io.ReadSeekCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return readSeekNopCloser{strings.NewReader(m.blob)}, nil
}

func (m *stubFiles) Delete(_ context.Context, _, ref string) error {
	m.deleted = append(m.deleted, ref)
	return nil
}

// stubSearchRecords pops one canned result list per FindMatching call,
// so a direct miss followed by an enhanced pass can be scripted.
type stubSearchRecords struct {
	findResults [][]domrec.Record
	findErr     error
	seenFilters []filter.Filter
	countResult int
	countErr    error
}

func (m *stubSearchRecords) FindMatching(
	_ context.Context, f filter.Filter, _ domsort.Sort, _, _ int,
) ([]domrec.Record, error) {
	m.seenFilters = append(m.seenFilters, f)
	if m.findErr != nil {
		return nil, m.findErr
	}
	if len(m.findResults) == 0 {
		return nil, nil
	}
	out := m.findResults[0]
	m.findResults = m.findResults[1:]
	return out, nil
}

func (m *stubSearchRecords) Count(_ context.Context, _ filter.Filter) (int, error) {
	return m.countResult, m.countErr
}

type stubOracle struct {
	h     hints.Hints
	err   error
	calls int
}

func (m *stubOracle) ExtractSearchParams(_ context.Context, _ string, _ []string) (hints.Hints, error) {
	m.calls++
	return m.h, m.err
}

type stubPinger struct{ err error }

func (m *stubPinger) Ping(_ context.Context) error { return m.err }

type stubBudget struct {
	dailyLimit, monthlyLimit         int64
	dailyUsed, monthlyUsed           int64
	dailyReqs, monthlyReqs           int64
	remainingDaily, remainingMonthly int64
}

func (m *stubBudget) DailyLimit() int64       { return m.dailyLimit }
func (m *stubBudget) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *stubBudget) DailyUsed() int64        { return m.dailyUsed }
func (m *stubBudget) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *stubBudget) DailyRequests() int64    { return m.dailyReqs }
func (m *stubBudget) MonthlyRequests() int64  { return m.monthlyReqs }
func (m *stubBudget) RemainingDaily() int64   { return m.remainingDaily }
func (m *stubBudget) RemainingMonthly() int64 { return m.remainingMonthly }

// asOwner replaces JWTAuth in handler tests: every request runs as the
// given owner.
func asOwner(owner string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ownerKey, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type testEnv struct {
	repo   *stubRepo
	files  *stubFiles
	srecs  *stubSearchRecords
	oracle *stubOracle
	budget *stubBudget
	pinger *stubPinger
	server *Server
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:   &stubRepo{},
		files:  &stubFiles{saveRef: "ref-1_upload.bin", blob: "blob-bytes"},
		srecs:  &stubSearchRecords{},
		oracle: &stubOracle{},
		budget: &stubBudget{},
		pinger: &stubPinger{},
	}
	env.server = NewServer(
		recorduc.New(env.repo, env.files, nil),
		searchuc.New(env.srecs, env.oracle),
		usageuc.New(env.budget),
		healthuc.New(env.pinger, nil),
		zap.NewNop(),
	)
	env.router = env.server.Routes(asOwner("u1"))
	return env
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func storedNote(id, title, content string, tags []string) domrec.Record {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return domrec.Reconstruct(id, "u1", domrec.Note, title, content, "", tags, "", created, created)
}

// --- Health and metrics ---

func TestHealth_OK(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest("GET", "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeBody[healthResponse](t, rr)
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Checks["database"] != "ok" {
		t.Errorf("database check = %q", resp.Checks["database"])
	}
}

func TestHealth_Degraded_503(t *testing.T) {
	env := newTestEnv(t)
	env.pinger.err = io.ErrUnexpectedEOF

	rr := env.do(httptest.NewRequest("GET", "/health", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	resp := decodeBody[healthResponse](t, rr)
	if resp.Status != "degraded" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestMetricsExposed(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest("GET", "/metrics", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestUnknownRoute_404(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest("GET", "/api/v1/nope", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}
