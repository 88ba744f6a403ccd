// Package normalize cleans raw strings scraped from detail pages into canonical field values.
package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/JakeFAU/bbw-directory/internal/directory"
)

// lineBreak matches the <br> marker separating address lines, including the
// self-closing forms produced when markup is re-rendered.
var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

var emailReplacer = strings.NewReplacer("(at)", "@", "(dot)", ".")

// CleanPhone reduces a raw contact paragraph to a dialable number.
//
// Whitespace is removed, everything up to and including the first "T" (the
// "Tel" label) is dropped, and only digits survive along with a leading "+".
func CleanPhone(raw string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if idx := strings.IndexByte(compact, 'T'); idx >= 0 {
		compact = compact[idx+1:]
	}

	var b strings.Builder
	b.Grow(len(compact))
	for _, r := range compact {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+':
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}
	// Only a plus at the very start is meaningful.
	rest := strings.ReplaceAll(digits[1:], "+", "")
	return digits[:1] + rest
}

// CleanEmail undoes the "(at)"/"(dot)" obfuscation used on mail links.
func CleanEmail(raw string) string {
	return emailReplacer.Replace(raw)
}

// SplitAddressBlock splits the inner markup of an address paragraph into its
// street, city and region lines. A nil block yields all sentinels.
func SplitAddressBlock(block *string) directory.PostalAddress {
	addr := directory.PostalAddress{
		Street: directory.StreetNotFound,
		City:   directory.CityNotFound,
		Region: directory.RegionNotFound,
	}
	if block == nil {
		return addr
	}

	segments := lineBreak.Split(*block, -1)
	addr.Street = cleanSegment(segments[0])
	if len(segments) > 1 {
		if city := cleanSegment(segments[1]); city != "" {
			addr.City = city
		}
	}
	if len(segments) > 2 {
		if region := cleanSegment(segments[2]); region != "" {
			addr.Region = region
		}
	}
	return addr
}

func cleanSegment(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
