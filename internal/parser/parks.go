package parser

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/model"
)

// ntparksBase absolutizes the relative links and image paths the park site
// emits.
const ntparksBase = "https://www.ntparks.tw/"

// parkRegion is fixed: the listing covers a single city.
const parkRegion = "新北市"

// embedCoordPattern matches the Google Maps embed URL on detail pages;
// group 1 is longitude, group 2 latitude.
var embedCoordPattern = regexp.MustCompile(`google\.com/maps/embed\?pb=[^"]*!2d([\d.]+)!3d([\d.]+)`)

// parkImagePrefix restricts image extraction to park photos; site chrome
// and icons live under other paths.
const parkImagePrefix = "images/views/"

// ParseParksListing extracts summary entries from one page of the park
// listing: name, coarse district, and the detail-page link. Address and
// coordinates stay empty pending the detail-fetch phase. indexOffset keeps
// source ids unique across listing pages.
func ParseParksListing(r io.Reader, indexOffset int) ([]model.Place, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "parser: parse parks listing HTML")
	}

	var places []model.Place
	for _, li := range elementsMatching(doc, "li", func(n *html.Node) bool {
		return strings.HasPrefix(attr(n, "id"), "view-")
	}) {
		titles := elementsMatching(li, "h3", withClass("title"))
		if len(titles) == 0 {
			continue
		}
		name := collapse(text(titles[0]))
		if name == "" {
			continue
		}

		var location string
		if locs := elementsMatching(li, "p", withClass("location")); len(locs) > 0 {
			location = collapse(text(locs[0]))
		}

		var link string
		if anchors := elementsMatching(li, "a", withClass("views-List")); len(anchors) > 0 {
			link = absolutize(attr(anchors[0], "href"))
		}

		// Listing locations read "新北市．三峽區"; the part after the
		// separator is the district.
		var district string
		if parts := strings.Split(location, "．"); len(parts) >= 2 {
			district = address.EnsureUnitSuffix(strings.TrimSpace(parts[1]))
		}

		places = append(places, model.Place{
			Name:      name,
			Region:    parkRegion,
			SubRegion: address.NormalizeSubRegion(district),
			Link:      link,
			Metadata: map[string]any{
				"originalLocation": location,
				"htmlId":           attr(li, "id"),
			},
			Source:   model.SourceNewTaipeiParks,
			SourceID: fmt.Sprintf("ntpc_park_%d_%s", indexOffset+len(places), name),
		})
	}
	return places, nil
}

// ParkDetail holds the fields extracted from one park detail page.
type ParkDetail struct {
	Address          string
	Description      string
	PlayEquipment    string
	FitnessEquipment string
	Latitude         *float64
	Longitude        *float64
	ImageLinks       []string
	Extra            map[string]string
}

// detail-page section labels; everything else goes to Extra.
const (
	labelAddress     = "位置"
	labelDescription = "公園介紹"
	labelPlay        = "遊具設施"
	labelFitness     = "體健設施"
)

// ParseParkDetail extracts the labeled sections, park photos, and the map
// embed coordinates from one detail page. Missing sections stay empty; the
// caller validates coordinates against the envelope.
func ParseParkDetail(markup string) (ParkDetail, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ParkDetail{}, eris.Wrap(err, "parser: parse park detail HTML")
	}

	detail := ParkDetail{Extra: make(map[string]string)}

	for _, title := range elementsMatching(doc, "div", withClass("stitle")) {
		key := collapse(text(title))
		value := collapse(text(nextSiblingWithClass(title, "div", "content")))
		if key == "" || value == "" {
			continue
		}
		switch key {
		case labelAddress:
			detail.Address = value
		case labelDescription:
			detail.Description = value
		case labelPlay:
			detail.PlayEquipment = value
		case labelFitness:
			detail.FitnessEquipment = value
		default:
			detail.Extra[key] = value
		}
	}

	for _, img := range elementsMatching(doc, "img", func(n *html.Node) bool {
		return strings.Contains(attr(n, "src"), parkImagePrefix)
	}) {
		if src := absolutize(attr(img, "src")); src != "" {
			detail.ImageLinks = append(detail.ImageLinks, src)
		}
	}

	if m := embedCoordPattern.FindStringSubmatch(markup); m != nil {
		lng, errLng := strconv.ParseFloat(m[1], 64)
		lat, errLat := strconv.ParseFloat(m[2], 64)
		if errLng == nil && errLat == nil {
			detail.Latitude = &lat
			detail.Longitude = &lng
		}
	}

	return detail, nil
}

func absolutize(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return ntparksBase + strings.TrimLeft(ref, "/")
}

// HTML traversal helpers.

func elementsMatching(n *html.Node, tag string, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && (match == nil || match(n)) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func withClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func nextSiblingWithClass(n *html.Node, tag, class string) *html.Node {
	match := withClass(class)
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data == tag && match(s) {
			return s
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	if n == nil {
		return ""
	}
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

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "　", " ")), " ")
}
