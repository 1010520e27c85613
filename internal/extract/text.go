package extract

import (
	"strings"
	"unicode"

	"github.com/parentmap/ingest-cli/internal/model"
)

// textDelimiter ends a prose description of one piece of equipment
// ("suitable for ..." age phrasing).
const textDelimiter = "適合"

// connectives introduce the description after the equipment name.
var connectives = []rune{'是', '為'}

// textStrategy handles prose descriptions where the equipment name is stated,
// often repeated, and then described up to a 適合 (suitable-for) phrase:
// "攀爬網攀爬網是由粗繩編成，適合學齡兒童". One name is extracted per
// delimited segment.
func (e *Extractor) textStrategy(in Input) []model.Facility {
	if in.Text == "" || !strings.Contains(in.Text, textDelimiter) {
		return nil
	}

	var out []model.Facility
	segments := strings.Split(in.Text, textDelimiter)
	// The text after the final delimiter describes no further equipment.
	for _, seg := range segments[:len(segments)-1] {
		name := e.segmentName(seg)
		if name == "" {
			continue
		}
		out = append(out, model.Facility{EquipmentName: name})
	}
	return dedupe(out)
}

// segmentName finds the equipment name inside one segment: a doubled run of
// Han characters, or failing that a run ending in a connective verb.
func (e *Extractor) segmentName(seg string) string {
	for _, run := range hanRuns(seg) {
		if name := doubledPrefix(run); name != "" && e.validName(name) {
			return name
		}
	}
	for _, run := range hanRuns(seg) {
		if name := beforeConnective(run); name != "" && e.validName(name) {
			return name
		}
	}
	return ""
}

// hanRuns splits a string into maximal runs of Han characters.
func hanRuns(s string) []string {
	var runs []string
	var cur []rune
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			cur = append(cur, r)
			continue
		}
		if len(cur) > 0 {
			runs = append(runs, string(cur))
			cur = nil
		}
	}
	if len(cur) > 0 {
		runs = append(runs, string(cur))
	}
	return runs
}

// doubledPrefix finds the first immediately repeated substring in a Han run,
// preferring the longest repetition at the earliest position.
func doubledPrefix(run string) string {
	rs := []rune(run)
	for i := 0; i < len(rs); i++ {
		max := (len(rs) - i) / 2
		if max > maxNameRunes {
			max = maxNameRunes
		}
		for n := max; n >= minNameRunes; n-- {
			if string(rs[i:i+n]) == string(rs[i+n:i+2*n]) {
				return string(rs[i : i+n])
			}
		}
	}
	return ""
}

// beforeConnective returns the text before the first connective verb in a
// run, e.g. "旋轉盤是..." yields 旋轉盤.
func beforeConnective(run string) string {
	rs := []rune(run)
	for i, r := range rs {
		for _, c := range connectives {
			if r == c && i >= minNameRunes {
				return string(rs[:i])
			}
		}
	}
	return ""
}
