package pptx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// partRoot is the directory every relationship target is resolved against.
const partRoot = "ppt/"

// slidePartPrefix starts every slide part name, recognized or not.
const slidePartPrefix = "ppt/slides/slide"

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide([1-9][0-9]*)\.xml$`)

// SlidePartPath returns the part path of slide n.
func SlidePartPath(n int) string {
	return fmt.Sprintf("ppt/slides/slide%d.xml", n)
}

// SlideRelsPath returns the relationship manifest path of slide n.
func SlideRelsPath(n int) string {
	return fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n)
}

// DiagramDataPath returns the conventional SmartArt data-model path for slide n.
func DiagramDataPath(n int) string {
	return fmt.Sprintf("ppt/diagrams/data%d.xml", n)
}

// ParseSlideIndex reports the slide number encoded in a slide part path.
// Zero-padded or non-positive numbers are rejected so each index maps back
// to exactly one path.
func ParseSlideIndex(path string) (int, bool) {
	m := slidePartRe.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PartPath turns a normalized relationship target into a package path.
func PartPath(target string) string {
	return partRoot + target
}

// normalizeTarget makes a manifest target relative to partRoot.
func normalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(strings.TrimPrefix(target, "/"), partRoot)
	}
	for {
		switch {
		case strings.HasPrefix(target, "../"):
			target = target[len("../"):]
		case strings.HasPrefix(target, "./"):
			target = target[len("./"):]
		default:
			return target
		}
	}
}
