package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/parentmap/ingest-cli/internal/model"
)

// tableMarker labels the equipment table on detail pages.
const tableMarker = "遊具設施內容"

// tableStrategy extracts facilities from the first table labeled with
// tableMarker. Header rows (containing <th>) are skipped; the first cell of
// each data row is the equipment name and the first <img> in the row supplies
// the image reference.
func (e *Extractor) tableStrategy(in Input) []model.Facility {
	if in.HTML == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(in.HTML))
	if err != nil {
		return nil
	}

	table := findLabeledTable(doc, false)
	if table == nil {
		return nil
	}

	var out []model.Facility
	for _, row := range findAll(table, "tr") {
		if len(findAll(row, "th")) > 0 {
			continue
		}
		cells := findAll(row, "td")
		if len(cells) == 0 {
			continue
		}
		name := collapseSpace(nodeText(cells[0]))
		if !e.validName(name) {
			continue
		}
		out = append(out, model.Facility{
			EquipmentName: name,
			ImageRef:      firstImageSrc(row),
		})
	}
	return dedupe(out)
}

// findLabeledTable returns the first table that either contains the marker
// text itself or follows it in document order.
func findLabeledTable(n *html.Node, seenMarker bool) *html.Node {
	var walk func(*html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.TextNode && strings.Contains(n.Data, tableMarker) {
			seenMarker = true
		}
		if n.Type == html.ElementNode && n.Data == "table" {
			if seenMarker || strings.Contains(nodeText(n), tableMarker) {
				return n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(n)
}

// findAll collects descendant elements with the given tag, in document order.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

// nodeText concatenates all text under a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func firstImageSrc(n *html.Node) string {
	for _, img := range findAll(n, "img") {
		for _, a := range img.Attr {
			if a.Key == "src" && a.Val != "" {
				return a.Val
			}
		}
	}
	return ""
}
