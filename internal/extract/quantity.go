package extract

import (
	"regexp"
	"strings"

	"github.com/parentmap/ingest-cli/internal/model"
)

var (
	// quantityLabel anchors the facility enumeration in fixed-format
	// documents: "數量：滑梯1組、鞦韆2座、...".
	quantityLabel = regexp.MustCompile(`數量\s*[：:]?\s*`)

	// quantityToken matches a count suffix to strip from each item, in
	// arabic or Chinese numerals: 1組, 2座, 三個.
	quantityToken = regexp.MustCompile(`[\d一二三四五六七八九十]+\s*[個組面片座項]`)
)

// contextWindow limits how far back the 遊具設施 context word may sit from
// the 數量 label for the label to count as a facility enumeration.
const contextWindow = 100

// quantityStrategy parses enumerations of the form
// "數量：滑梯1組、鞦韆2座、安全告示牌1個" that fixed-format documents use.
// The 數量 label must be preceded, within a short window, by the 遊具設施
// context word; the enumeration runs until the next section heading.
func (e *Extractor) quantityStrategy(in Input) []model.Facility {
	if in.Text == "" {
		return nil
	}

	var out []model.Facility
	for _, seg := range quantitySegments(in.Text) {
		for _, item := range splitItems(seg) {
			name := strings.TrimSpace(quantityToken.ReplaceAllString(item, ""))
			name = strings.Trim(name, "。.;；")
			if !e.validName(name) {
				continue
			}
			out = append(out, model.Facility{EquipmentName: name})
		}
	}
	return dedupe(out)
}

// quantitySegments finds every qualifying 數量 label and returns the text
// between it and the next section marker (or end of document).
func quantitySegments(text string) []string {
	var segs []string
	for _, loc := range quantityLabel.FindAllStringIndex(text, -1) {
		winStart := loc[0] - contextWindow*3 // bytes; Han runes are 3 bytes
		if winStart < 0 {
			winStart = 0
		}
		if !strings.Contains(text[winStart:loc[0]], "遊具設施") {
			continue
		}

		seg := text[loc[1]:]
		end := len(seg)
		for _, marker := range sectionMarkers {
			if i := strings.Index(seg, marker); i >= 0 && i < end {
				end = i
			}
		}
		segs = append(segs, collapseSpace(seg[:end]))
	}
	return segs
}

// splitItems breaks an enumeration on list separators, then on the 及
// conjunction joining the final pair.
func splitItems(seg string) []string {
	parts := strings.FieldsFunc(seg, func(r rune) bool {
		return r == '、' || r == '，' || r == ','
	})
	var items []string
	for _, p := range parts {
		for _, sub := range strings.Split(p, "及") {
			if sub = strings.TrimSpace(sub); sub != "" {
				items = append(items, sub)
			}
		}
	}
	return items
}
