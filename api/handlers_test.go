package api_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel/claims-engine/api"
	"github.com/kestrel/claims-engine/rates"
	"github.com/kestrel/claims-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const seedYAML = `
terms:
  "1y":
    - effective_from: 2015-01-01
      annual_rate_percent: "4.85"
    - effective_from: 2015-10-24
      annual_rate_percent: "4.35"
    - effective_from: 2019-08-20
      annual_rate_percent: "3.85"
  "5y+":
    - effective_from: 2015-01-01
      annual_rate_percent: "4.90"
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	table, err := rates.LoadYAML([]byte(seedYAML))
	require.NoError(t, err)

	handler := api.NewHandler(store, rates.NewProvider(table))
	server := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

// =============================================================================
// INTEREST
// =============================================================================

func TestComputeInterest(t *testing.T) {
	server := newTestServer(t)

	// GIVEN a floating-benchmark spec spanning one published rate change
	resp := postJSON(t, server, "/api/interest/compute", map[string]any{
		"regime":     "floating_benchmark",
		"principal":  "100000",
		"start":      "2019-06-01",
		"end":        "2019-12-01",
		"multiplier": "1.5",
		"term":       "1y",
	})

	// THEN the breakdown has one row per constant-rate sub-interval
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result api.InterestResultDTO
	decodeBody(t, resp, &result)
	require.Len(t, result.Periods, 2)
	assert.Equal(t, "3059.8", result.TotalInterest)
	assert.Equal(t, "103059.8", result.TotalAmount)
	assert.Equal(t, 80, result.Periods[0].Days)
	assert.Equal(t, "6.525", result.Periods[0].RatePercent)
}

func TestComputeInterest_NoCoverage(t *testing.T) {
	server := newTestServer(t)

	// WHEN a benchmark-priced interval starts before the earliest
	// published segment
	resp := postJSON(t, server, "/api/interest/compute", map[string]any{
		"regime":    "floating_benchmark",
		"principal": "1000",
		"start":     "2010-01-01",
		"end":       "2010-12-31",
		"term":      "1y",
	})
	defer resp.Body.Close()

	// THEN the gap is the caller's data problem, not a bad request
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestComputeInterest_NegativePrincipal(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "/api/interest/compute", map[string]any{
		"regime":             "simple",
		"principal":          "-100",
		"start":              "2020-01-01",
		"end":                "2020-06-01",
		"fixed_rate_percent": "6",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComputeInterest_BadSpec(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "/api/interest/compute", map[string]any{
		"regime":    "compound_daily",
		"principal": "1000",
		"start":     "2020-01-01",
		"end":       "2020-06-01",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// LIMITATION
// =============================================================================

func TestEvaluateLimitation(t *testing.T) {
	server := newTestServer(t)

	// GIVEN a contract claim whose three-year period lapsed before filing
	resp := postJSON(t, server, "/api/limitation/evaluate", map[string]any{
		"relationship": "contract",
		"as_of":        "2024-01-01",
		"case": map[string]any{
			"nominal_deadline": "2020-05-31",
		},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verdict api.VerdictDTO
	decodeBody(t, resp, &verdict)
	assert.Equal(t, "expired", verdict.Outcome)
	assert.Equal(t, 3, verdict.PeriodYears)
	assert.Equal(t, "2020-06-01", verdict.StartDate.String())
	assert.Equal(t, "2023-06-01", verdict.FinalExpiration.String())
	assert.NotEmpty(t, verdict.Trace)
}

func TestEvaluateLimitation_Ambiguous(t *testing.T) {
	server := newTestServer(t)

	// WHEN no fact anchors the period
	resp := postJSON(t, server, "/api/limitation/evaluate", map[string]any{
		"relationship": "contract",
		"as_of":        "2024-01-01",
		"case":         map[string]any{},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// DECIDE + AUDIT LOG
// =============================================================================

func decideBody() map[string]any {
	return map[string]any{
		"cutoff": "2025-05-12",
		"claim": map[string]any{
			"id":           "claim-001",
			"creditor":     "Acme Trading Ltd",
			"relationship": "contract",
			"general": map[string]any{
				"nominal_deadline": "2020-05-31",
				"events": []map[string]any{
					{"kind": "interruption", "type": "written_demand", "occurred_on": "2022-12-15"},
				},
			},
			"components": []map[string]any{
				{"label": "accrued interest", "regime": "floating_benchmark",
					"principal": "100000", "start": "2020-06-01",
					"multiplier": "1.5", "term": "1y"},
			},
		},
	}
}

func TestDecideClaim(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "/api/claims/decide", decideBody())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decision api.DecisionDTO
	decodeBody(t, resp, &decision)

	assert.Equal(t, "confirmed", decision.Status)
	assert.Equal(t, "claim-001", decision.ClaimID)
	require.NotNil(t, decision.General)
	assert.Equal(t, "not_expired", decision.General.Outcome)
	assert.Equal(t, "2025-12-15", decision.General.FinalExpiration.String())
	require.Len(t, decision.Components, 1)
	assert.Empty(t, decision.Components[0].Error)
	assert.NotEmpty(t, decision.TotalInterest)

	// AND the decision is in the audit log
	listResp, err := http.Get(server.URL + "/api/decisions?claim_id=claim-001")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var records []api.DecisionRecordDTO
	decodeBody(t, listResp, &records)
	require.Len(t, records, 1)
	assert.Equal(t, decision.ID, records[0].ID)
	assert.Equal(t, "confirmed", records[0].Status)

	// AND retrievable individually with the full record
	getResp, err := http.Get(server.URL + "/api/decisions/" + decision.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestDecideClaim_UnknownRelationship(t *testing.T) {
	server := newTestServer(t)

	body := decideBody()
	body["claim"].(map[string]any)["relationship"] = "lease"
	resp := postJSON(t, server, "/api/claims/decide", body)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDecideBatch(t *testing.T) {
	server := newTestServer(t)

	first := decideBody()["claim"].(map[string]any)
	second := decideBody()["claim"].(map[string]any)
	second["id"] = "claim-002"
	// Second claim has no anchoring fact and must come back CannotConfirm
	// without blocking the first.
	second["general"] = map[string]any{}
	second["components"] = []map[string]any{}

	resp := postJSON(t, server, "/api/claims/decide-batch", map[string]any{
		"cutoff": "2025-05-12",
		"claims": []any{first, second},
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decisions []api.DecisionDTO
	decodeBody(t, resp, &decisions)
	require.Len(t, decisions, 2)
	assert.Equal(t, "confirmed", decisions[0].Status)
	assert.Equal(t, "cannot_confirm", decisions[1].Status)
}

func TestGetDecision_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/decisions/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// RATES
// =============================================================================

func TestRates_ListAndAppend(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/rates")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var segments []api.RateSegmentDTO
	decodeBody(t, resp, &segments)
	assert.Len(t, segments, 4)

	// WHEN a new benchmark value is published
	appendResp := postJSON(t, server, "/api/rates/segments", map[string]any{
		"term":                "1y",
		"effective_from":      "2025-01-01",
		"annual_rate_percent": "3.35",
	})
	require.Equal(t, http.StatusCreated, appendResp.StatusCode)
	var oneYear []api.RateSegmentDTO
	decodeBody(t, appendResp, &oneYear)
	require.Len(t, oneYear, 4)
	last := oneYear[len(oneYear)-1]
	assert.Equal(t, "3.35", last.AnnualRatePercent)
	assert.True(t, last.EffectiveTo.IsZero(), "newest segment stays open")

	// AND later computations see the new rate
	computeResp := postJSON(t, server, "/api/interest/compute", map[string]any{
		"regime":    "floating_benchmark",
		"principal": "10000",
		"start":     "2025-01-01",
		"end":       "2025-02-01",
		"term":      "1y",
	})
	require.Equal(t, http.StatusOK, computeResp.StatusCode)
	var result api.InterestResultDTO
	decodeBody(t, computeResp, &result)
	require.Len(t, result.Periods, 1)
	assert.Equal(t, "3.35", result.Periods[0].RatePercent)
}

func TestRates_AppendOutOfOrder(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "/api/rates/segments", map[string]any{
		"term":                "1y",
		"effective_from":      "2016-01-01",
		"annual_rate_percent": "9.99",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health api.HealthResponse
	decodeBody(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 4, health.RateSegments)
}
