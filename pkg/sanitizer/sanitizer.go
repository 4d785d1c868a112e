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

var reShortClock = regexp.MustCompile(`^(\d):([0-5]\d)$`)

func lower(s string) string {
	return strings.ToLower(s)
}

func padClock(s string) string {
	return reShortClock.ReplaceAllString(s, "0$1:$2")
}

// dropSeconds turns "14:00:00" into "14:00" so clients may send full time-of-day values.
func dropSeconds(s string) string {
	if len(s) == 8 && s[2] == ':' && s[5] == ':' {
		return s[:5]
	}
	return s
}

func SanitizeClock(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		dropSeconds,
		padClock,
	}
	return p.Apply(input)
}

func SanitizeDate(input string) string {
	return strings.TrimSpace(input)
}

func SanitizeID(input string) string {
	return strings.TrimSpace(input)
}

// SanitizeEnum normalizes free-form enumeration input such as " Caregiver  for Elderly ".
func SanitizeEnum(input string) string {
	p := Pipeline{
		TrimAndNormalize,
		lower,
	}
	return p.Apply(input)
}
