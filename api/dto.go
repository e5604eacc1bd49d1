/*
dto.go - Request and response shapes for the HTTP API

PURPOSE:
  Wire types for the REST endpoints, decoupled from the domain structs.
  Dates travel as "2006-01-02" strings; money and rates travel as quoted
  decimal strings so no client ever receives a binary float.

SEE ALSO:
  - handlers.go: Endpoints that produce and consume these shapes
  - factory: The claim/case document schema shared with the ingest pipeline
*/
package api

import (
	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/claims"
	"github.com/kestrel/claims-engine/factory"
	"github.com/kestrel/claims-engine/interest"
	"github.com/kestrel/claims-engine/limitation"
	"github.com/kestrel/claims-engine/rates"
	"github.com/kestrel/claims-engine/store/sqlite"
)

// =============================================================================
// REQUESTS
// =============================================================================

// LimitationRequest evaluates one case in isolation, without pricing.
type LimitationRequest struct {
	Relationship string           `json:"relationship"`
	Kind         string           `json:"kind,omitempty"` // defaults to general_limitation
	AsOf         calendar.Date    `json:"as_of,omitempty"`
	Case         factory.CaseJSON `json:"case"`
}

// DecideRequest runs the full decide operation for one claim document.
type DecideRequest struct {
	Cutoff calendar.Date     `json:"cutoff"`
	Claim  factory.ClaimJSON `json:"claim"`
}

// DecideBatchRequest decides a filing's whole claim list under one cutoff.
type DecideBatchRequest struct {
	Cutoff calendar.Date       `json:"cutoff"`
	Claims []factory.ClaimJSON `json:"claims"`
}

// AppendSegmentRequest publishes one new benchmark value.
type AppendSegmentRequest struct {
	Term              string        `json:"term"`
	EffectiveFrom     calendar.Date `json:"effective_from"`
	AnnualRatePercent string        `json:"annual_rate_percent"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type PeriodDTO struct {
	Start       calendar.Date `json:"start"`
	End         calendar.Date `json:"end"`
	Days        int           `json:"days"`
	RatePercent string        `json:"rate_percent"`
	Interest    string        `json:"interest"`
}

type InterestResultDTO struct {
	Periods              []PeriodDTO `json:"periods"`
	TotalInterest        string      `json:"total_interest"`
	TotalAmount          string      `json:"total_amount"`
	EffectiveRatePercent string      `json:"effective_rate_percent"`
}

type EventDTO struct {
	Kind          string        `json:"kind"`
	Type          string        `json:"type"`
	OccurredOn    calendar.Date `json:"occurred_on"`
	SuspensionEnd calendar.Date `json:"suspension_end,omitempty"`
	EvidenceRef   string        `json:"evidence_ref,omitempty"`
}

type TraceStepDTO struct {
	Description     string        `json:"description"`
	Disposition     string        `json:"disposition"`
	Event           *EventDTO     `json:"event,omitempty"`
	Reason          string        `json:"reason,omitempty"`
	ExpirationAfter calendar.Date `json:"expiration_after,omitempty"`
}

type VerdictDTO struct {
	Kind            string         `json:"kind"`
	PeriodYears     int            `json:"period_years"`
	StartDate       calendar.Date  `json:"start_date"`
	BaseExpiration  calendar.Date  `json:"base_expiration"`
	AppliedEvents   []EventDTO     `json:"applied_events"`
	FinalExpiration calendar.Date  `json:"final_expiration"`
	Suspended       bool           `json:"suspended"`
	Outcome         string         `json:"outcome"`
	Trace           []TraceStepDTO `json:"trace"`
}

type ComponentResultDTO struct {
	Label  string             `json:"label"`
	Result *InterestResultDTO `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

type ProblemDTO struct {
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

type DecisionDTO struct {
	ID            string               `json:"id"`
	ClaimID       string               `json:"claim_id"`
	Cutoff        calendar.Date        `json:"cutoff"`
	General       *VerdictDTO          `json:"general,omitempty"`
	Execution     *VerdictDTO          `json:"execution,omitempty"`
	Components    []ComponentResultDTO `json:"components"`
	TotalInterest string               `json:"total_interest"`
	TotalAmount   string               `json:"total_amount"`
	Status        string               `json:"status"`
	Problems      []ProblemDTO         `json:"problems,omitempty"`
}

type RateSegmentDTO struct {
	Term              string        `json:"term"`
	EffectiveFrom     calendar.Date `json:"effective_from"`
	EffectiveTo       calendar.Date `json:"effective_to,omitempty"` // zero = still in force
	AnnualRatePercent string        `json:"annual_rate_percent"`
}

type DecisionRecordDTO struct {
	ID               string `json:"id"`
	ClaimID          string `json:"claim_id"`
	Cutoff           string `json:"cutoff"`
	Status           string `json:"status"`
	GeneralOutcome   string `json:"general_outcome,omitempty"`
	ExecutionOutcome string `json:"execution_outcome,omitempty"`
	TotalInterest    string `json:"total_interest"`
	TotalAmount      string `json:"total_amount"`
	CreatedAt        string `json:"created_at"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	RateSegments int    `json:"rate_segments"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPeriodDTO(p interest.Period) PeriodDTO {
	return PeriodDTO{
		Start:       p.Start,
		End:         p.End,
		Days:        p.Days,
		RatePercent: p.RatePercent.String(),
		Interest:    p.Interest.String(),
	}
}

func toResultDTO(r *interest.Result) *InterestResultDTO {
	if r == nil {
		return nil
	}
	dto := &InterestResultDTO{
		Periods:              make([]PeriodDTO, len(r.Periods)),
		TotalInterest:        r.TotalInterest.String(),
		TotalAmount:          r.TotalAmount.String(),
		EffectiveRatePercent: r.EffectiveRatePercent.String(),
	}
	for i, p := range r.Periods {
		dto.Periods[i] = toPeriodDTO(p)
	}
	return dto
}

func toEventDTO(ev limitation.Event) EventDTO {
	return EventDTO{
		Kind:          string(ev.Kind),
		Type:          string(ev.Type),
		OccurredOn:    ev.OccurredOn,
		SuspensionEnd: ev.SuspensionEnd,
		EvidenceRef:   ev.EvidenceRef,
	}
}

func toVerdictDTO(v *limitation.Verdict) *VerdictDTO {
	if v == nil {
		return nil
	}
	dto := &VerdictDTO{
		Kind:            string(v.Kind),
		PeriodYears:     v.PeriodYears,
		StartDate:       v.StartDate,
		BaseExpiration:  v.BaseExpiration,
		AppliedEvents:   make([]EventDTO, len(v.AppliedEvents)),
		FinalExpiration: v.FinalExpiration,
		Suspended:       v.Suspended,
		Outcome:         string(v.Outcome),
		Trace:           make([]TraceStepDTO, len(v.Trace)),
	}
	for i, ev := range v.AppliedEvents {
		dto.AppliedEvents[i] = toEventDTO(ev)
	}
	for i, step := range v.Trace {
		s := TraceStepDTO{
			Description:     step.Description,
			Disposition:     string(step.Disposition),
			Reason:          step.Reason,
			ExpirationAfter: step.ExpirationAfter,
		}
		if step.Event != nil {
			ev := toEventDTO(*step.Event)
			s.Event = &ev
		}
		dto.Trace[i] = s
	}
	return dto
}

func toDecisionDTO(d *claims.Decision) DecisionDTO {
	dto := DecisionDTO{
		ID:            d.ID,
		ClaimID:       d.ClaimID,
		Cutoff:        d.Cutoff,
		General:       toVerdictDTO(d.General),
		Execution:     toVerdictDTO(d.Execution),
		Components:    make([]ComponentResultDTO, len(d.Components)),
		TotalInterest: d.TotalInterest.String(),
		TotalAmount:   d.TotalAmount.String(),
		Status:        string(d.Status),
	}
	for i, c := range d.Components {
		dto.Components[i] = ComponentResultDTO{
			Label:  c.Label,
			Result: toResultDTO(c.Result),
			Error:  c.Err,
		}
	}
	for _, p := range d.Problems {
		dto.Problems = append(dto.Problems, ProblemDTO{Subject: p.Subject, Detail: p.Detail})
	}
	return dto
}

func toSegmentDTO(s rates.Segment) RateSegmentDTO {
	return RateSegmentDTO{
		Term:              string(s.Term),
		EffectiveFrom:     s.EffectiveFrom,
		EffectiveTo:       s.EffectiveTo,
		AnnualRatePercent: s.AnnualRatePercent.String(),
	}
}

func toDecisionRecordDTO(r sqlite.DecisionRecord) DecisionRecordDTO {
	return DecisionRecordDTO{
		ID:               r.ID,
		ClaimID:          r.ClaimID,
		Cutoff:           r.Cutoff,
		Status:           r.Status,
		GeneralOutcome:   r.GeneralOutcome,
		ExecutionOutcome: r.ExecutionOutcome,
		TotalInterest:    r.TotalInterest,
		TotalAmount:      r.TotalAmount,
		CreatedAt:        r.CreatedAt,
	}
}
