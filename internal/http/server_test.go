package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costtracker/internal/records/memory"
)

func newTestServer(t *testing.T, apiKey string) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	srv := NewServer(":0", store, apiKey)
	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func createExpense(t *testing.T, ts *httptest.Server, payload map[string]any) map[string]any {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/expenses", payload, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "healthy", got["status"])
	assert.Equal(t, "Cost Tracker API is running", got["message"])
}

func TestCreateAndGetExpense(t *testing.T) {
	ts, _ := newTestServer(t, "")

	created := createExpense(t, ts, map[string]any{
		"service_name": "EC2",
		"client":       "acme",
		"cost":         100.456,
		"description":  "compute",
	})

	id, _ := created["expense_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, 100.46, created["cost"], "cost rounded at write time")
	assert.Equal(t, created["created_at"], created["updated_at"])

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/expenses/"+id, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created, got)
}

func TestCreateValidationFailure(t *testing.T) {
	ts, store := newTestServer(t, "")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/expenses", map[string]any{
		"service_name": "EC2",
		"client":       "acme",
		"cost":         -5,
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var envelope struct {
		Detail []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NotEmpty(t, envelope.Detail)
	assert.Equal(t, "cost", envelope.Detail[0].Field)

	// Nothing persisted by the failed create.
	items, err := store.List(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateMalformedBody(t *testing.T) {
	ts, _ := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/expenses", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateMissingCost(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/expenses", map[string]any{
		"service_name": "EC2",
		"client":       "acme",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetMissingExpense(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/expenses/does-not-exist", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateExpense(t *testing.T) {
	ts, _ := newTestServer(t, "")

	created := createExpense(t, ts, map[string]any{
		"service_name": "EC2",
		"client":       "acme",
		"cost":         100,
	})
	id := created["expense_id"].(string)

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/expenses/"+id, map[string]any{
		"cost": 42.5,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated map[string]any
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, id, updated["expense_id"])
	assert.Equal(t, "EC2", updated["service_name"], "unsupplied fields untouched")
	assert.Equal(t, 42.5, updated["cost"])
	assert.Equal(t, created["created_at"], updated["created_at"])
}

func TestUpdateEmptyBodyIsNoOp(t *testing.T) {
	ts, _ := newTestServer(t, "")

	created := createExpense(t, ts, map[string]any{
		"service_name": "EC2",
		"client":       "acme",
		"cost":         100,
	})
	id := created["expense_id"].(string)

	resp, body := doJSON(t, http.MethodPut, ts.URL+"/expenses/"+id, map[string]any{}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created, got, "record returned unchanged, updated_at untouched")
}

func TestUpdateMissingExpense(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/expenses/missing", map[string]any{
		"cost": 10,
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateValidationFailure(t *testing.T) {
	ts, _ := newTestServer(t, "")

	created := createExpense(t, ts, map[string]any{
		"service_name": "EC2",
		"client":       "acme",
		"cost":         100,
	})
	id := created["expense_id"].(string)

	resp, _ := doJSON(t, http.MethodPut, ts.URL+"/expenses/"+id, map[string]any{
		"client": "",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDeleteExpense(t *testing.T) {
	ts, _ := newTestServer(t, "")

	created := createExpense(t, ts, map[string]any{
		"service_name": "EC2",
		"client":       "acme",
		"cost":         100,
	})
	id := created["expense_id"].(string)

	resp, body := doJSON(t, http.MethodDelete, ts.URL+"/expenses/"+id, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Contains(t, got["message"], id)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/expenses/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deleting again yields a clean 404, not a server error.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/expenses/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListExpenses(t *testing.T) {
	ts, _ := newTestServer(t, "")

	for i := 0; i < 3; i++ {
		createExpense(t, ts, map[string]any{
			"service_name": fmt.Sprintf("svc-%d", i),
			"client":       "acme",
			"cost":         10,
		})
	}

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/expenses", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(body, &items))
	assert.Len(t, items, 3)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/expenses?limit=2", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &items))
	assert.Len(t, items, 2)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/expenses?limit=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIKeyAuth(t *testing.T) {
	ts, _ := newTestServer(t, "sekret")

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/expenses", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "missing key rejected")

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/expenses", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "wrong key rejected")

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/expenses", nil, map[string]string{"X-API-Key": "sekret"})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "correct key accepted")

	// Health stays reachable without a key.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCostBreakdownEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	day40 := day1.Add(39 * 24 * time.Hour)
	createExpense(t, ts, map[string]any{
		"service_name": "EC2", "client": "prod", "cost": 100, "date": day1.Format(time.RFC3339),
	})
	createExpense(t, ts, map[string]any{
		"service_name": "S3", "client": "prod", "cost": 50, "date": day1.Format(time.RFC3339),
	})
	createExpense(t, ts, map[string]any{
		"service_name": "EC2", "client": "staging", "cost": 25, "date": day40.Format(time.RFC3339),
	})

	url := fmt.Sprintf("%s/cost-breakdown?start_date=%s&end_date=%s&group_by=service_name",
		ts.URL, "2024-01-01", "2024-01-30")
	resp, body := doJSON(t, http.MethodGet, url, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Summary struct {
			TotalCost     float64 `json:"total_cost"`
			TotalExpenses int     `json:"total_expenses"`
			GroupBy       string  `json:"group_by"`
		} `json:"summary"`
		Breakdown []struct {
			Category   string  `json:"category"`
			TotalCost  float64 `json:"total_cost"`
			Percentage float64 `json:"percentage"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(body, &got))

	assert.Equal(t, 150.0, got.Summary.TotalCost)
	assert.Equal(t, 2, got.Summary.TotalExpenses)
	assert.Equal(t, "service_name", got.Summary.GroupBy)
	require.Len(t, got.Breakdown, 2)
	assert.Equal(t, "EC2", got.Breakdown[0].Category)
	assert.Equal(t, 66.67, got.Breakdown[0].Percentage)
	assert.Equal(t, "S3", got.Breakdown[1].Category)
	assert.Equal(t, 33.33, got.Breakdown[1].Percentage)
}

func TestCostBreakdownBadGroupBy(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/cost-breakdown?group_by=cost", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMonthlyTrendsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	recent := time.Now().AddDate(0, 0, -10)
	createExpense(t, ts, map[string]any{
		"service_name": "EC2", "client": "acme", "cost": 30, "date": recent.Format(time.RFC3339),
	})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/monthly-trends?months=3", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Trends []struct {
			Month        string  `json:"month"`
			TotalCost    float64 `json:"total_cost"`
			ExpenseCount int     `json:"expense_count"`
		} `json:"trends"`
		Period string `json:"period"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Last 3 months", got.Period)
	require.Len(t, got.Trends, 1)
	assert.Equal(t, 30.0, got.Trends[0].TotalCost)
	assert.Equal(t, 1, got.Trends[0].ExpenseCount)
}

func TestTopServicesEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, "")

	createExpense(t, ts, map[string]any{"service_name": "EC2", "client": "a", "cost": 100})
	createExpense(t, ts, map[string]any{"service_name": "S3", "client": "a", "cost": 20})
	createExpense(t, ts, map[string]any{"service_name": "EC2", "client": "b", "cost": 50})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/top-services?limit=1", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []struct {
		ServiceName  string  `json:"service_name"`
		TotalCost    float64 `json:"total_cost"`
		ExpenseCount int     `json:"expense_count"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "EC2", got[0].ServiceName)
	assert.Equal(t, 150.0, got[0].TotalCost)
	assert.Equal(t, 2, got[0].ExpenseCount)
}
