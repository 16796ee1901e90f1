package pptx

import (
	"errors"
	"regexp"
)

// RelationshipMap maps a relationship id to its target, relative to ppt/.
type RelationshipMap map[string]string

var (
	relationshipRe = regexp.MustCompile(`<Relationship\s[^>]*>`)
	attrRe         = regexp.MustCompile(`([A-Za-z_:][\w.:-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// ResolveRelationships reads the manifest of slide n. A slide without a
// manifest has an empty map.
func ResolveRelationships(pkg Package, n int) (RelationshipMap, error) {
	raw, err := pkg.ReadPart(SlideRelsPath(n))
	if errors.Is(err, ErrPartNotFound) {
		return RelationshipMap{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseRelationships(raw), nil
}

// ParseRelationships builds a RelationshipMap from manifest markup. Entries
// without an Id or Target, and external targets, are skipped.
func ParseRelationships(xml string) RelationshipMap {
	rels := RelationshipMap{}
	for _, el := range relationshipRe.FindAllString(xml, -1) {
		attrs := parseAttrs(el)
		id, target := attrs["Id"], attrs["Target"]
		if id == "" || target == "" {
			continue
		}
		if attrs["TargetMode"] == "External" {
			continue
		}
		rels[id] = normalizeTarget(target)
	}
	return rels
}

func parseAttrs(tag string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
		v := m[2]
		if v == "" {
			v = m[3]
		}
		attrs[m[1]] = v
	}
	return attrs
}
