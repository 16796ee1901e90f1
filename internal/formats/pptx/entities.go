package pptx

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// entityRe matches the five predefined XML entities and numeric character
// references. Named HTML entities such as &nbsp; are not XML and stay as-is.
var entityRe = regexp.MustCompile(`&(amp|lt|gt|quot|apos|#[0-9]+|#[xX][0-9a-fA-F]+);`)

var xmlEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// DecodeEntities replaces XML entity and character references in s in a
// single pass, so "&amp;lt;" decodes to "&lt;". References to code points
// that are not valid XML characters are left unchanged.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityRe.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if v, ok := xmlEntities[name]; ok {
			return v
		}
		digits, base := name[1:], 10
		if digits[0] == 'x' || digits[0] == 'X' {
			digits, base = digits[1:], 16
		}
		cp, err := strconv.ParseUint(digits, base, 32)
		if err != nil || !validXMLChar(rune(cp)) {
			return ref
		}
		return string(rune(cp))
	})
}

// validXMLChar reports whether r is allowed by the XML 1.0 Char production.
func validXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= utf8.MaxRune:
		return true
	}
	return false
}
