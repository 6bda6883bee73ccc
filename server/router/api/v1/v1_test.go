package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/internal/profile"
	"github.com/cropify/cropify/plugin/weather"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/db/sqlite"
	"github.com/cropify/cropify/store/kv"
)

// newTestAPI builds the v1 service on a throwaway sqlite store, with AI
// disabled (no API key).
func newTestAPI(t *testing.T) (*APIV1Service, *echo.Echo) {
	t.Helper()

	dir := t.TempDir()
	p := &profile.Profile{
		Mode:      "dev",
		Driver:    "sqlite",
		DSN:       filepath.Join(dir, "cropify_test.db"),
		Data:      dir,
		Version:   "0.1.0",
		KVBackend: "memory",
	}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	st := store.New(driver, p)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = st.Close()
	})

	service, err := NewAPIV1Service(p, st, kv.NewMemory())
	require.NoError(t, err)

	e := echo.New()
	service.Register(e)
	return service, e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "ok", payload["status"])
	require.NotEmpty(t, payload["version"])
}

func TestNetworkStatusRoundTrip(t *testing.T) {
	service, e := newTestAPI(t)

	rec := doJSON(t, e, http.MethodGet, "/api/v1/network/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"online": true}`, rec.Body.String())

	rec = doJSON(t, e, http.MethodPost, "/api/v1/network/status", `{"online": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"online": false}`, rec.Body.String())
	require.False(t, service.Monitor.Online())

	// The online flag is mandatory, not defaulted.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/network/status", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationEndpoints(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/conversations", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		UID         string `json:"uid"`
		Title       string `json:"title"`
		TitleSource string `json:"titleSource"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.UID)
	require.Equal(t, "New Chat", created.Title)
	require.Equal(t, "default", created.TitleSource)

	// An explicit title is a user title: auto-titling must not overwrite it.
	rec = doJSON(t, e, http.MethodPost, "/api/v1/conversations", `{"title": "Pest notes"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var named struct {
		TitleSource string `json:"titleSource"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &named))
	require.Equal(t, "user", named.TitleSource)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)

	rec = doJSON(t, e, http.MethodPatch, "/api/v1/conversations/"+created.UID, `{"title": "Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"Renamed"`)
	require.Contains(t, rec.Body.String(), `"user"`)

	rec = doJSON(t, e, http.MethodDelete, "/api/v1/conversations/"+created.UID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/conversations/"+created.UID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInferenceEndpointsUnavailableWithoutAI(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/chat", `{"conversationUid": "x", "query": "hello"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/chat/status", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/analysis", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/suggestions", `{"farmId": 1}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFarmEndpoints(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/farms", `{"name": "North Field"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, "location is required")

	rec = doJSON(t, e, http.MethodPost, "/api/v1/farms",
		`{"name": "North Field", "location": "Nashik, Maharashtra", "soilType": "loamy", "ph": 6.8}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var farm struct {
		ID int32   `json:"id"`
		PH float64 `json:"ph"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &farm))
	require.NotZero(t, farm.ID)
	require.Equal(t, 6.8, farm.PH)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/farms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "North Field")

	rec = doJSON(t, e, http.MethodGet, "/api/v1/farms/999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/farms/not-a-number", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionEndpoints(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(t, e, http.MethodPost, "/api/v1/transactions",
		`{"kind": "income", "category": "crop sale", "amount": 500000, "occurredTs": 1700000000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/transactions",
		`{"kind": "expense", "category": "seeds", "amount": 80000, "occurredTs": 1700000100}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/api/v1/transactions", `{"kind": "loan", "amount": 1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code, "unknown kind must be rejected")

	rec = doJSON(t, e, http.MethodGet, "/api/v1/transactions/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Income  int64 `json:"income"`
		Expense int64 `json:"expense"`
		Profit  int64 `json:"profit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.EqualValues(t, 500000, summary.Income)
	require.EqualValues(t, 80000, summary.Expense)
	require.EqualValues(t, 420000, summary.Profit)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/transactions?kind=expense", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "seeds")
	require.NotContains(t, rec.Body.String(), "crop sale")
}

func TestWeatherEndpointFallsBackToMock(t *testing.T) {
	_, e := newTestAPI(t)

	// No farm registered and no location given.
	rec := doJSON(t, e, http.MethodGet, "/api/v1/weather", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodGet, "/api/v1/weather?location=Nashik,%20Maharashtra", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report weather.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, *weather.Mock("Nashik, Maharashtra"), report)
}

func TestMetricsEndpoint(t *testing.T) {
	_, e := newTestAPI(t)

	rec := doJSON(t, e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "cropify_")
}
