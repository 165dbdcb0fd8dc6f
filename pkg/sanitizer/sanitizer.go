package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reControlChars = regexp.MustCompile(`[\x00-\x1f\x7f]+`)
	reMultiSpace   = regexp.MustCompile(`\s+`)
	rePlaceChars   = regexp.MustCompile(`[^0-9\p{L} ,.\-']+`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func collapseSpaces(s string) string {
	return reMultiSpace.ReplaceAllString(s, " ")
}

// Control characters become spaces so that glued words stay separated;
// collapseSpaces later normalizes the result.
func stripControl(s string) string {
	return reControlChars.ReplaceAllString(s, " ")
}

// SanitizePlace normalizes a free-text place name (origin, destination)
// before it reaches the distance provider or a Mongo filter.
func SanitizePlace(input string) string {
	p := Pipeline{
		stripControl,
		func(s string) string { return rePlaceChars.ReplaceAllString(s, "") },
		collapseSpaces,
		trim,
	}
	return p.Apply(input)
}

// SanitizeName normalizes a display name stored on a vehicle's booking
// pointer.
func SanitizeName(input string) string {
	p := Pipeline{
		stripControl,
		collapseSpaces,
		trim,
	}
	return p.Apply(input)
}
