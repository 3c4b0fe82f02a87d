package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-cli/internal/config"
	"github.com/sells-group/lease-cli/internal/extract"
	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/pattern"
	"github.com/sells-group/lease-cli/internal/pipeline"
	"github.com/sells-group/lease-cli/internal/reconcile"
	"github.com/sells-group/lease-cli/internal/segment"
	"github.com/sells-group/lease-cli/internal/store"
)

func newTestEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	cfg = &config.Config{
		RentRoll:   config.RentRollConfig{DefaultCPIRate: 3.0},
		Projection: config.ProjectionConfig{Years: 5, DiscountRate: 0.05},
	}

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	p := pipeline.New(cfg, st,
		segment.New(segment.DefaultConfig()),
		pattern.New(),
		extract.New(nil, 0),
		reconcile.New(),
	)
	return &pipelineEnv{Store: st, Pipeline: p}
}

func TestServe_Health(t *testing.T) {
	env := newTestEnv(t)
	r := newRouter(context.Background(), env)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_PostDocument(t *testing.T) {
	env := newTestEnv(t)
	r := newRouter(context.Background(), env)

	body := `{"name":"lease.txt","text":"base rent of $2,500.00 per month. The lease term shall commence on June 1, 2024 and shall expire on May 31, 2029."}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	docID := resp["document_id"]
	require.NotEmpty(t, docID)

	// processing runs async; poll the store for the report
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := env.Store.GetReport(context.Background(), docID); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for async processing")
		}
		time.Sleep(20 * time.Millisecond)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/fields", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var fields []model.LeaseField
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.NotEmpty(t, fields)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServe_PostDocument_Invalid(t *testing.T) {
	env := newTestEnv(t)
	r := newRouter(context.Background(), env)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"name":"x","text":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_ReportNotFound(t *testing.T) {
	env := newTestEnv(t)
	r := newRouter(context.Background(), env)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/nope/report", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSplitPages(t *testing.T) {
	pages := splitPages("one\n--- page 2 ---\ntwo")
	require.Len(t, pages, 2)
	assert.Equal(t, 2, pages[1].Number)
}
