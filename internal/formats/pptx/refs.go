package pptx

import (
	"regexp"
	"sort"
)

var (
	// SmartArt: <dgm:relIds r:dm="rId2" r:lo="rId3" .../>; only the data model carries text.
	diagramRefRe = regexp.MustCompile(`<dgm:relIds\s[^>]*?\br:dm\s*=\s*"([^"]+)"`)
	// Charts: <c:chart xmlns:c="..." r:id="rId4"/>.
	chartRefRe = regexp.MustCompile(`<c:chart\s[^>]*?\br:id\s*=\s*"([^"]+)"`)
)

// CollectReferenceIDs returns the relationship ids a slide uses to embed
// diagrams and charts, deduplicated, in order of first appearance.
func CollectReferenceIDs(xml string) []string {
	type hit struct {
		pos int
		id  string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{diagramRefRe, chartRefRe} {
		for _, m := range re.FindAllStringSubmatchIndex(xml, -1) {
			hits = append(hits, hit{pos: m[2], id: xml[m[2]:m[3]]})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.id] {
			continue
		}
		seen[h.id] = true
		ids = append(ids, h.id)
	}
	return ids
}
