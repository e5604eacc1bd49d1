/*
Package factory converts the pipeline's JSON claim documents into domain
structs.

PURPOSE:
  The upstream fact-extraction stage emits one JSON document per claim:
  relationship facts, event history, and declared amount components. This
  package parses and validates those documents into claims.Claim values so
  the evaluator never touches raw text. All document parsing lives here,
  at the edge; the engine packages only ever see typed domain structs.

JSON SCHEMA:
  {
    "id": "claim-001",
    "creditor": "Acme Trading Ltd",
    "relationship": "contract",
    "general": {
      "nominal_deadline": "2020-05-31",
      "events": [
        {"kind": "interruption", "type": "written_demand",
         "occurred_on": "2022-12-15", "evidence_ref": "exhibit-12"}
      ]
    },
    "components": [
      {"label": "accrued interest", "regime": "floating_benchmark",
       "principal": "100000", "start": "2020-06-01",
       "multiplier": "1.5", "term": "1y"}
    ]
  }

  Dates are "2006-01-02" strings; money and rates are quoted strings so
  they parse as exact decimals, never floats. Omitted end dates mean
  "accrue up to the cutoff".

SEE ALSO:
  - claims: the target domain types
  - api: wires parsed claims into the decide endpoints
*/
package factory

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/claims"
	"github.com/kestrel/claims-engine/interest"
	"github.com/kestrel/claims-engine/limitation"
	"github.com/kestrel/claims-engine/rates"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// ClaimJSON is the wire shape of one claim document.
type ClaimJSON struct {
	ID           string          `json:"id"`
	Creditor     string          `json:"creditor"`
	Relationship string          `json:"relationship"`
	General      CaseJSON        `json:"general"`
	Execution    *CaseJSON       `json:"execution,omitempty"`
	Components   []ComponentJSON `json:"components"`
}

type CaseJSON struct {
	NominalDeadline          calendar.Date   `json:"nominal_deadline,omitempty"`
	Installments             []calendar.Date `json:"installments,omitempty"`
	InjuryKnownOn            calendar.Date   `json:"injury_known_on,omitempty"`
	DemandServedOn           calendar.Date   `json:"demand_served_on,omitempty"`
	InstrumentEffectiveOn    calendar.Date   `json:"instrument_effective_on,omitempty"`
	SettlementBreachDeadline calendar.Date   `json:"settlement_breach_deadline,omitempty"`
	FilingDate               calendar.Date   `json:"filing_date,omitempty"`
	Events                   []EventJSON     `json:"events,omitempty"`
}

type EventJSON struct {
	Kind          string        `json:"kind"`
	Type          string        `json:"type"`
	OccurredOn    calendar.Date `json:"occurred_on"`
	SuspensionEnd calendar.Date `json:"suspension_end,omitempty"`
	EvidenceRef   string        `json:"evidence_ref,omitempty"`
}

type ComponentJSON struct {
	Label              string        `json:"label"`
	Regime             string        `json:"regime"`
	Principal          string        `json:"principal"`
	Start              calendar.Date `json:"start"`
	End                calendar.Date `json:"end,omitempty"`
	FixedRatePercent   string        `json:"fixed_rate_percent,omitempty"`
	Multiplier         string        `json:"multiplier,omitempty"`
	Term               string        `json:"term,omitempty"`
	PenaltyCapMultiple string        `json:"penalty_cap_multiple,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

type ClaimFactory struct{}

func NewClaimFactory() *ClaimFactory { return &ClaimFactory{} }

// ParseClaim converts one JSON document into a domain claim.
func (f *ClaimFactory) ParseClaim(data []byte) (claims.Claim, error) {
	var doc ClaimJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return claims.Claim{}, fmt.Errorf("parse claim document: %w", err)
	}
	return f.FromJSON(doc)
}

// ParseClaims converts a JSON array of claim documents.
func (f *ClaimFactory) ParseClaims(data []byte) ([]claims.Claim, error) {
	var docs []ClaimJSON
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse claim documents: %w", err)
	}

	out := make([]claims.Claim, 0, len(docs))
	for i, doc := range docs {
		claim, err := f.FromJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("claim %d (%s): %w", i, doc.ID, err)
		}
		out = append(out, claim)
	}
	return out, nil
}

// FromJSON validates an already-decoded document.
func (f *ClaimFactory) FromJSON(doc ClaimJSON) (claims.Claim, error) {
	if doc.ID == "" {
		return claims.Claim{}, fmt.Errorf("claim document missing id")
	}

	relationship := limitation.RelationshipType(doc.Relationship)
	switch relationship {
	case limitation.RelationshipContract, limitation.RelationshipTort, limitation.RelationshipJudgmentInstrument:
	default:
		return claims.Claim{}, fmt.Errorf("claim %s: unknown relationship %q", doc.ID, doc.Relationship)
	}

	claim := claims.Claim{
		ID:           doc.ID,
		Creditor:     doc.Creditor,
		Relationship: relationship,
		General:      CaseFromJSON(doc.General),
	}

	if doc.Execution != nil {
		execution := CaseFromJSON(*doc.Execution)
		claim.Execution = &execution
	}

	for i, comp := range doc.Components {
		parsed, err := componentFromJSON(comp)
		if err != nil {
			return claims.Claim{}, fmt.Errorf("claim %s component %d: %w", doc.ID, i, err)
		}
		claim.Components = append(claim.Components, parsed)
	}
	return claim, nil
}

// CaseFromJSON converts a case document. The caller is responsible for
// setting Kind and Relationship; the evaluator forces both anyway.
func CaseFromJSON(doc CaseJSON) limitation.Case {
	c := limitation.Case{
		NominalDeadline:          doc.NominalDeadline,
		Installments:             doc.Installments,
		InjuryKnownOn:            doc.InjuryKnownOn,
		DemandServedOn:           doc.DemandServedOn,
		InstrumentEffectiveOn:    doc.InstrumentEffectiveOn,
		SettlementBreachDeadline: doc.SettlementBreachDeadline,
		FilingDate:               doc.FilingDate,
	}
	for _, ev := range doc.Events {
		c.Events = append(c.Events, limitation.Event{
			Kind:          limitation.EventKind(ev.Kind),
			Type:          limitation.EventType(ev.Type),
			OccurredOn:    ev.OccurredOn,
			SuspensionEnd: ev.SuspensionEnd,
			EvidenceRef:   ev.EvidenceRef,
		})
	}
	return c
}

func componentFromJSON(doc ComponentJSON) (claims.Component, error) {
	if doc.Label == "" {
		return claims.Component{}, fmt.Errorf("component missing label")
	}

	spec, err := SpecFromJSON(doc)
	if err != nil {
		return claims.Component{}, err
	}
	return claims.Component{Label: doc.Label, Spec: spec}, nil
}

// SpecFromJSON converts the pricing fields of a component document into a
// computation spec. Label is ignored; standalone compute requests omit it.
func SpecFromJSON(doc ComponentJSON) (interest.Spec, error) {
	regime := interest.Regime(doc.Regime)
	if !regime.Valid() {
		return interest.Spec{}, fmt.Errorf("unknown regime %q", doc.Regime)
	}

	principal, err := parseDecimal(doc.Principal, "principal", true)
	if err != nil {
		return interest.Spec{}, err
	}
	fixedRate, err := parseDecimal(doc.FixedRatePercent, "fixed_rate_percent", false)
	if err != nil {
		return interest.Spec{}, err
	}
	multiplier, err := parseDecimal(doc.Multiplier, "multiplier", false)
	if err != nil {
		return interest.Spec{}, err
	}
	capMultiple, err := parseDecimal(doc.PenaltyCapMultiple, "penalty_cap_multiple", false)
	if err != nil {
		return interest.Spec{}, err
	}

	return interest.Spec{
		Regime:             regime,
		Principal:          principal,
		Start:              doc.Start,
		End:                doc.End,
		FixedRatePercent:   fixedRate,
		Multiplier:         multiplier,
		Term:               rates.Term(doc.Term),
		PenaltyCapMultiple: capMultiple,
	}, nil
}

// parseDecimal reads a quoted decimal field; empty optional fields come
// back zero so the calculator's defaulting rules take over.
func parseDecimal(s, field string, required bool) (decimal.Decimal, error) {
	if s == "" {
		if required {
			return decimal.Zero, fmt.Errorf("missing %s", field)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad %s %q: %w", field, s, err)
	}
	return d, nil
}
