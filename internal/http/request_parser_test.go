package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costtracker/internal/core"
)

func postJSON(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
}

func TestParseCreateRequest(t *testing.T) {
	fields, err := parseCreateRequest(postJSON(`{
		"service_name": "  EC2  ",
		"client": "acme",
		"cost": 12.345,
		"description": "compute"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "EC2", fields.ServiceName, "whitespace trimmed")
	assert.Equal(t, "acme", fields.Client)
	assert.Equal(t, "12.345", fields.Cost.String(), "rounding happens at the store, not the parser")
	assert.True(t, fields.Date.IsZero())
}

func TestParseCreateRequestStringCost(t *testing.T) {
	// json.Number accepts quoted numerics, so a string decimal is coerced
	// the same way the original API coerced it.
	fields, err := parseCreateRequest(postJSON(`{"service_name":"EC2","client":"acme","cost":"12"}`))
	require.NoError(t, err)
	assert.Equal(t, "12", fields.Cost.String())

	// A non-numeric string still fails at decode time.
	_, err = parseCreateRequest(postJSON(`{"service_name":"EC2","client":"acme","cost":"abc"}`))
	assert.ErrorIs(t, err, errMalformedBody)
}

func TestParseCreateRequestMissingCost(t *testing.T) {
	_, err := parseCreateRequest(postJSON(`{"service_name":"EC2","client":"acme"}`))
	require.Error(t, err)

	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cost", verr.Fields[0].Field)
	assert.Equal(t, "is required", verr.Fields[0].Message)
}

func TestParseCreateRequestDates(t *testing.T) {
	fields, err := parseCreateRequest(postJSON(`{"service_name":"EC2","client":"acme","cost":1,"date":"2024-03-15"}`))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), fields.Date)

	fields, err = parseCreateRequest(postJSON(`{"service_name":"EC2","client":"acme","cost":1,"date":"2024-03-15T10:30:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, 10, fields.Date.Hour())

	_, err = parseCreateRequest(postJSON(`{"service_name":"EC2","client":"acme","cost":1,"date":"15/03/2024"}`))
	require.Error(t, err)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Fields[0].Field)
}

func TestParseCreateRequestMalformed(t *testing.T) {
	_, err := parseCreateRequest(postJSON(`{broken`))
	assert.ErrorIs(t, err, errMalformedBody)
}

func TestParseUpdateRequestPartial(t *testing.T) {
	update, err := parseUpdateRequest(postJSON(`{"cost": 42.5}`))
	require.NoError(t, err)
	assert.Nil(t, update.ServiceName)
	assert.Nil(t, update.Client)
	assert.Nil(t, update.Description)
	require.NotNil(t, update.Cost)
	assert.Equal(t, "42.5", update.Cost.String())

	empty, err := parseUpdateRequest(postJSON(`{}`))
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestParseUpdateRequestRejectsInvalid(t *testing.T) {
	_, err := parseUpdateRequest(postJSON(`{"cost": -1}`))
	require.Error(t, err)

	_, err = parseUpdateRequest(postJSON(`{"client": "   "}`))
	require.Error(t, err)
}

func TestParseIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/expenses?limit=5", nil)
	n, err := parseIntParam(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	req = httptest.NewRequest(http.MethodGet, "/expenses", nil)
	n, err = parseIntParam(req, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, n)

	for _, bad := range []string{"0", "-3", "abc"} {
		req = httptest.NewRequest(http.MethodGet, "/expenses?limit="+bad, nil)
		_, err = parseIntParam(req, "limit", 50)
		assert.Error(t, err, "limit=%s", bad)
	}
}

func TestParseDateParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cost-breakdown", nil)
	d, err := parseDateParam(req, "start_date")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	req = httptest.NewRequest(http.MethodGet, "/cost-breakdown?start_date=2024-01-01", nil)
	d, err = parseDateParam(req, "start_date")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
}
