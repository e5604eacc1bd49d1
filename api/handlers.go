/*
handlers.go - HTTP API handlers for the claim review engine

PURPOSE:
  Exposes the limitation engine, interest calculator and claim evaluator
  via REST. Handles HTTP request/response, JSON codec, and delegates to
  domain logic. Decisions are appended to the audit log before the
  response is written.

ENDPOINTS:
  Computation:
    POST   /api/interest/compute       Price one spec against the current table
    POST   /api/limitation/evaluate    Evaluate one case, no pricing
    POST   /api/claims/decide          Full decide operation for one claim
    POST   /api/claims/decide-batch    Decide a claim list under one cutoff

  Rates:
    GET    /api/rates                  Current benchmark table
    POST   /api/rates/segments         Publish a new benchmark value

  Audit:
    GET    /api/decisions              Past decisions (filter: claim_id, limit)
    GET    /api/decisions/{id}         One decision, full record

  Health:
    GET    /api/health

SNAPSHOT RULE:
  Every computation takes one table snapshot via Provider.Current() at the
  start of the request and uses it throughout. A rate published mid-request
  is only visible to later requests.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed documents, invalid specs, unanchorable cases
  - 404: Decision not found
  - 422: Interval not covered by the published rate table
  - 500: Storage failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/claims"
	"github.com/kestrel/claims-engine/factory"
	"github.com/kestrel/claims-engine/interest"
	"github.com/kestrel/claims-engine/limitation"
	"github.com/kestrel/claims-engine/rates"
	"github.com/kestrel/claims-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Rates   *rates.Provider
	Engine  *limitation.Engine
	Factory *factory.ClaimFactory
}

// NewHandler creates a handler over the given store and rate provider.
func NewHandler(store *sqlite.Store, provider *rates.Provider) *Handler {
	return &Handler{
		Store:   store,
		Rates:   provider,
		Engine:  limitation.NewEngine(),
		Factory: factory.NewClaimFactory(),
	}
}

// evaluator builds a claim evaluator over one table snapshot.
func (h *Handler) evaluator() *claims.Evaluator {
	return claims.NewEvaluator(h.Engine, interest.NewCalculator(h.Rates.Current()))
}

// =============================================================================
// COMPUTATION HANDLERS
// =============================================================================

// ComputeInterest prices one spec against the current rate table.
// POST /api/interest/compute
func (h *Handler) ComputeInterest(w http.ResponseWriter, r *http.Request) {
	var doc factory.ComponentJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	spec, err := factory.SpecFromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid computation spec", err)
		return
	}

	calc := interest.NewCalculator(h.Rates.Current())
	result, err := calc.Compute(spec)
	if err != nil {
		writeError(w, statusFor(err), "Computation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toResultDTO(result))
}

// EvaluateLimitation runs the limitation engine for one case, no pricing.
// POST /api/limitation/evaluate
func (h *Handler) EvaluateLimitation(w http.ResponseWriter, r *http.Request) {
	var req LimitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c := factory.CaseFromJSON(req.Case)
	c.Relationship = limitation.RelationshipType(req.Relationship)
	c.Kind = limitation.CaseKind(req.Kind)

	verdict, err := h.Engine.Evaluate(c, req.AsOf)
	if err != nil {
		writeError(w, statusFor(err), "Evaluation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toVerdictDTO(verdict))
}

// DecideClaim runs the full decide operation and appends the decision to
// the audit log.
// POST /api/claims/decide
func (h *Handler) DecideClaim(w http.ResponseWriter, r *http.Request) {
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	claim, err := h.Factory.FromJSON(req.Claim)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid claim document", err)
		return
	}

	decision, err := h.evaluator().Decide(claim, req.Cutoff)
	if err != nil {
		writeError(w, statusFor(err), "Decide failed", err)
		return
	}

	if err := h.Store.AppendDecision(r.Context(), decision); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record decision", err)
		return
	}

	writeJSON(w, http.StatusOK, toDecisionDTO(decision))
}

// DecideBatch decides a filing's claim list under one cutoff. Claims are
// independent; one claim's problems never block its neighbours.
// POST /api/claims/decide-batch
func (h *Handler) DecideBatch(w http.ResponseWriter, r *http.Request) {
	var req DecideBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	claimList := make([]claims.Claim, 0, len(req.Claims))
	for i, doc := range req.Claims {
		claim, err := h.Factory.FromJSON(doc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid claim document at index "+strconv.Itoa(i), err)
			return
		}
		claimList = append(claimList, claim)
	}

	decisions, err := h.evaluator().DecideBatch(claimList, req.Cutoff)
	if err != nil {
		writeError(w, statusFor(err), "Decide failed", err)
		return
	}

	// One transaction for the whole batch: a storage failure must not leave
	// a partial prefix in the audit log.
	if err := h.Store.AppendDecisions(r.Context(), decisions); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record decisions", err)
		return
	}

	dtos := make([]DecisionDTO, len(decisions))
	for i, d := range decisions {
		dtos[i] = toDecisionDTO(d)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// ListRates returns the current benchmark table, all terms.
// GET /api/rates
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	segments := h.Rates.Current().AllSegments()
	dtos := make([]RateSegmentDTO, len(segments))
	for i, s := range segments {
		dtos[i] = toSegmentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AppendSegment publishes a new benchmark value: persisted first, then
// swapped into the live table.
// POST /api/rates/segments
func (h *Handler) AppendSegment(w http.ResponseWriter, r *http.Request) {
	var req AppendSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	term := rates.Term(req.Term)
	if !term.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown term", nil)
		return
	}
	rate, err := decimal.NewFromString(req.AnnualRatePercent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid annual_rate_percent", err)
		return
	}

	table, err := h.Rates.Publish(term, req.EffectiveFrom, rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Rejected segment", err)
		return
	}
	if err := h.Store.AppendRateSegment(r.Context(), term, req.EffectiveFrom, rate); err != nil {
		// Live table is already swapped; the operator retries the persist.
		writeError(w, http.StatusInternalServerError, "Failed to persist segment", err)
		return
	}

	segments := table.Segments(term)
	dtos := make([]RateSegmentDTO, len(segments))
	for i, s := range segments {
		dtos[i] = toSegmentDTO(s)
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// ListDecisions returns past decisions, newest first.
// GET /api/decisions?claim_id=X&limit=N
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	claimID := r.URL.Query().Get("claim_id")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	records, err := h.Store.ListDecisions(r.Context(), claimID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list decisions", err)
		return
	}

	dtos := make([]DecisionRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toDecisionRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDecision returns one audit record with the full decision JSON.
// GET /api/decisions/{id}
func (h *Handler) GetDecision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.Store.GetDecision(r.Context(), id)
	if err != nil {
		if errors.Is(err, sqlite.ErrDecisionNotFound) {
			writeError(w, http.StatusNotFound, "Decision not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get decision", err)
		return
	}

	// The stored record_json is the authoritative decision; return it
	// verbatim rather than re-serializing.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(record.RecordJSON))
}

// Health reports liveness and the size of the published rate table.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		RateSegments: len(h.Rates.Current().AllSegments()),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// statusFor maps domain errors onto HTTP statuses. Coverage gaps are the
// caller's data problem, not a malformed request, hence 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, rates.ErrNoRateCoverage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sqlite.ErrDecisionNotFound):
		return http.StatusNotFound
	case errors.Is(err, interest.ErrInvalidSpec),
		errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, limitation.ErrAmbiguousStartDate),
		errors.Is(err, limitation.ErrMissingFilingDate),
		errors.Is(err, limitation.ErrUnknownCaseKind),
		errors.Is(err, claims.ErrMissingCutoff):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
