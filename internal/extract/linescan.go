package extract

import (
	"bufio"
	"strings"

	"github.com/parentmap/ingest-cli/internal/model"
)

// lineScanStrategy is the last-resort extraction: scan the document line by
// line for short lines naming known equipment. An age-range line ("適合2-12歲")
// closes the current entry; an image reference between the name and the age
// line attaches to the entry.
func (e *Extractor) lineScanStrategy(in Input) []model.Facility {
	if in.Text == "" {
		return nil
	}

	var (
		out  []model.Facility
		open *model.Facility
	)
	flush := func() {
		if open != nil {
			out = append(out, *open)
			open = nil
		}
	}

	sc := bufio.NewScanner(strings.NewReader(in.Text))
	for sc.Scan() {
		line := collapseSpace(sc.Text())
		if line == "" {
			continue
		}

		switch {
		case e.isNameLine(line):
			flush()
			open = &model.Facility{EquipmentName: line}
		case isAgeLine(line):
			flush()
		case open != nil && isImageRef(line):
			if open.ImageRef == "" {
				open.ImageRef = line
			}
		}
	}
	flush()
	return dedupe(out)
}

func (e *Extractor) isNameLine(line string) bool {
	if !e.validName(line) {
		return false
	}
	if e.hasStructuralKeyword(line) {
		return false
	}
	return e.hasEquipmentKeyword(line)
}

// isAgeLine reports whether a line is an age-range marker such as
// "適合2-12歲" or "3~6歲".
func isAgeLine(line string) bool {
	return strings.Contains(line, "歲")
}

func isImageRef(line string) bool {
	l := strings.ToLower(line)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif"} {
		if strings.Contains(l, ext) {
			return true
		}
	}
	return false
}
