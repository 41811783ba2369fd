package parsers

import (
	"math"
	"strconv"
	"strings"
)

var unitMultipliers = map[byte]int64{
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
	'P': 1 << 50,
}

// ParseMemoryString converts "512M", "2.5G", "1024K", "26G", "100MB" or a
// bare byte count into bytes. Units are binary and case-insensitive.
// Malformed input yields 0.
func ParseMemoryString(s string) int64 {
	return parseMemoryWithUnit(s, 1)
}

// parseMemoryWithUnit is ParseMemoryString with a multiplier for values
// that carry no suffix.
func parseMemoryWithUnit(s string, bareUnit int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	// top marks growth/shrink with a trailing + or -.
	s = strings.TrimRight(s, "+-")
	if s == "" {
		return 0
	}

	s = strings.TrimSuffix(s, "IB")
	if len(s) > 1 && s[len(s)-1] == 'B' {
		if _, ok := unitMultipliers[s[len(s)-2]]; ok {
			s = s[:len(s)-1]
		} else {
			// Plain "512B".
			s = s[:len(s)-1]
			bareUnit = 1
		}
	}
	if s == "" {
		return 0
	}

	mult := bareUnit
	if m, ok := unitMultipliers[s[len(s)-1]]; ok {
		mult = m
		s = s[:len(s)-1]
	}

	v, ok := parseFinite(s)
	if !ok || v < 0 {
		return 0
	}
	bytes := v * float64(mult)
	if bytes >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(bytes)
}

// parseFinite parses a float and rejects NaN and infinities, which
// ParseFloat accepts.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseRuntime converts "mm:ss", "hh:mm:ss" or "dd-hh:mm:ss" into seconds.
// A fractional seconds part ("12:34.56" from top) is dropped. Anything
// else, including a bare number, yields 0.
func ParseRuntime(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}

	var days int64
	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		d, ok := atoiNonNeg(s[:dash])
		if !ok {
			return 0
		}
		days = d
		s = s[dash+1:]
	}

	parts := strings.Split(s, ":")
	vals := make([]int64, len(parts))
	for i, p := range parts {
		v, ok := atoiNonNeg(p)
		if !ok {
			return 0
		}
		vals[i] = v
	}

	switch len(vals) {
	case 2:
		if days > 0 {
			return 0
		}
		return vals[0]*60 + vals[1]
	case 3:
		return days*86400 + vals[0]*3600 + vals[1]*60 + vals[2]
	default:
		return 0
	}
}

func atoiNonNeg(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
