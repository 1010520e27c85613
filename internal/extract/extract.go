// Package extract pulls facility (play equipment) lists out of heterogeneous
// source documents: labeled HTML tables, semi-structured PDF text, and free
// running text. Strategies are tried in order of reliability; the first one
// that yields any facility wins.
package extract

import (
	"strings"
	"unicode"

	"github.com/parentmap/ingest-cli/internal/model"
)

// Input carries the document forms a strategy may consume. HTML holds detail
// page markup; Text holds extracted PDF text or plain prose. Either may be
// empty.
type Input struct {
	HTML string
	Text string
}

// Strategy attempts to extract facilities from one document form. A nil or
// empty result means the strategy does not apply.
type Strategy func(in Input) []model.Facility

// Extractor runs the strategy chain with a configurable keyword set.
type Extractor struct {
	exclude    []string
	structural []string
	equipment  []string
}

// New returns an Extractor with the built-in keyword lists.
func New() *Extractor {
	return &Extractor{
		exclude:    append([]string(nil), defaultExclude...),
		structural: append([]string(nil), defaultStructural...),
		equipment:  append([]string(nil), defaultEquipment...),
	}
}

// Facilities runs the strategies in order and returns the first non-empty
// result. Order matters: the labeled table is authoritative when present,
// the line scan is a last resort.
func (e *Extractor) Facilities(in Input) []model.Facility {
	strategies := []Strategy{
		e.tableStrategy,
		e.textStrategy,
		e.quantityStrategy,
		e.lineScanStrategy,
	}
	for _, s := range strategies {
		if out := s(in); len(out) > 0 {
			return out
		}
	}
	return nil
}

const (
	minNameRunes = 2
	maxNameRunes = 30
)

// ListFacilities splits a short labeled equipment list, e.g. a detail page's
// "磨石子滑梯、攀爬網" field, into facilities. Quantity tokens are stripped
// and the shared name guards apply.
func (e *Extractor) ListFacilities(text string) []model.Facility {
	var out []model.Facility
	for _, item := range splitItems(collapseSpace(text)) {
		name := strings.TrimSpace(quantityToken.ReplaceAllString(item, ""))
		name = strings.Trim(name, "。.;；")
		if !e.validName(name) {
			continue
		}
		out = append(out, model.Facility{EquipmentName: name})
	}
	return dedupe(out)
}

// validName applies the shared guards: length bounds, at least one Han rune,
// and no excluded keyword as a substring.
func (e *Extractor) validName(name string) bool {
	n := len([]rune(name))
	if n < minNameRunes || n > maxNameRunes {
		return false
	}
	if !containsHan(name) {
		return false
	}
	for _, kw := range e.exclude {
		if strings.Contains(name, kw) {
			return false
		}
	}
	return true
}

func (e *Extractor) hasEquipmentKeyword(s string) bool {
	for _, kw := range e.equipment {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func (e *Extractor) hasStructuralKeyword(s string) bool {
	for _, kw := range e.structural {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// dedupe keeps the first facility per name, preserving order.
func dedupe(in []model.Facility) []model.Facility {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, f := range in {
		if _, ok := seen[f.EquipmentName]; ok {
			continue
		}
		seen[f.EquipmentName] = struct{}{}
		out = append(out, f)
	}
	return out
}

// collapseSpace replaces runs of whitespace (including full-width spaces)
// with a single space and trims the ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "　", " ")), " ")
}
