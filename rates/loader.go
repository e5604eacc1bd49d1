/*
loader.go - YAML seed document loading

PURPOSE:
  The benchmark history is provisioned by an external publication process;
  at startup the engine loads it from a YAML seed document. The document
  lists rate changes per term in publication order; effective_to boundaries
  are derived, never written by hand.

DOCUMENT FORMAT:
  terms:
    "1y":
      - effective_from: 2015-03-01
        annual_rate_percent: "5.35"
      - effective_from: 2015-10-24
        annual_rate_percent: "4.35"
    "5y+":
      - effective_from: 2015-10-24
        annual_rate_percent: "4.90"

Rates are quoted strings so they parse as exact decimals, never floats.
*/
package rates

import (
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kestrel/claims-engine/calendar"
)

type seedDocument struct {
	Terms map[Term][]seedEntry `yaml:"terms"`
}

// Dates are plain strings here; the YAML codec has no text-unmarshal hook
// for calendar.Date, so the loader parses them itself.
type seedEntry struct {
	EffectiveFrom string `yaml:"effective_from"`
	RatePercent   string `yaml:"annual_rate_percent"`
}

// LoadYAML parses a seed document into a validated Table.
func LoadYAML(data []byte) (*Table, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rates: parse seed document: %w", err)
	}

	var segments []Segment
	for term, entries := range doc.Terms {
		parsed := make([]Segment, len(entries))
		for i, e := range entries {
			from, err := calendar.Parse(e.EffectiveFrom)
			if err != nil {
				return nil, fmt.Errorf("rates: term %s: bad effective_from %q: %w",
					term, e.EffectiveFrom, err)
			}
			rate, err := decimal.NewFromString(e.RatePercent)
			if err != nil {
				return nil, fmt.Errorf("rates: term %s at %s: bad rate %q: %w",
					term, from, e.RatePercent, err)
			}
			parsed[i] = Segment{Term: term, EffectiveFrom: from, AnnualRatePercent: rate}
		}
		sort.Slice(parsed, func(i, j int) bool {
			return parsed[i].EffectiveFrom.Before(parsed[j].EffectiveFrom)
		})
		for i := range parsed {
			if i < len(parsed)-1 {
				parsed[i].EffectiveTo = parsed[i+1].EffectiveFrom
			}
		}
		segments = append(segments, parsed...)
	}
	return NewTable(segments)
}

// LoadYAMLFile loads a seed document from disk.
func LoadYAMLFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rates: read seed file: %w", err)
	}
	return LoadYAML(data)
}
