package reconcile

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/shlex"
	"github.com/rileyhilliard/procmon/internal/collector"
	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/parsers"
)

// Field names a filterable column. The names match the sort columns.
type Field string

const (
	FieldPID     Field = "pid"
	FieldName    Field = "name"
	FieldCPU     Field = "cpu"
	FieldMemory  Field = "mem"
	FieldGPU     Field = "gpu"
	FieldNetwork Field = "net"
	FieldRuntime Field = "time"
	FieldClass   Field = "type"
)

// Fields lists every filterable field in column order.
var Fields = []Field{FieldPID, FieldName, FieldCPU, FieldMemory, FieldGPU, FieldNetwork, FieldRuntime, FieldClass}

var fieldAliases = map[string]Field{
	"pid":     FieldPID,
	"name":    FieldName,
	"command": FieldName,
	"cpu":     FieldCPU,
	"mem":     FieldMemory,
	"memory":  FieldMemory,
	"ram":     FieldMemory,
	"gpu":     FieldGPU,
	"net":     FieldNetwork,
	"network": FieldNetwork,
	"time":    FieldRuntime,
	"runtime": FieldRuntime,
	"type":    FieldClass,
	"class":   FieldClass,
}

// LookupField resolves a field name or alias, case-insensitively.
func LookupField(name string) (Field, bool) {
	f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

type numericOp int

const (
	opExact numericOp = iota
	opAtLeast
	opAtMost
	opRange
)

// percentTolerance makes "15" match a displayed 15.0 that is really 14.98.
const percentTolerance = 0.05

type numeric struct {
	op       numericOp
	min, max float64
	tol      float64
}

func (n numeric) match(v float64) bool {
	switch n.op {
	case opAtLeast:
		return v >= n.min-n.tol
	case opAtMost:
		return v <= n.max+n.tol
	case opRange:
		return v >= n.min-n.tol && v <= n.max+n.tol
	default:
		return math.Abs(v-n.min) <= n.tol
	}
}

type classChoice int

const (
	classAll classChoice = iota
	classSystem
	classUser
)

// FieldFilter matches one column of a ProcessRecord.
type FieldFilter struct {
	Field Field
	// Text is the filter as the user typed it.
	Text string

	num    numeric
	substr string
	class  classChoice
}

// Active reports whether the filter narrows anything. Empty text and the
// "All" class match every record.
func (f FieldFilter) Active() bool {
	if strings.TrimSpace(f.Text) == "" {
		return false
	}
	return f.Field != FieldClass || f.class != classAll
}

// Match reports whether r passes the filter.
func (f FieldFilter) Match(r collector.ProcessRecord) bool {
	if !f.Active() {
		return true
	}

	switch f.Field {
	case FieldPID:
		return f.num.match(float64(r.PID))
	case FieldName:
		return strings.Contains(strings.ToLower(r.Name), f.substr)
	case FieldCPU:
		return f.num.match(r.CPU)
	case FieldMemory:
		return f.num.match(float64(r.MemoryBytes))
	case FieldGPU:
		pct, ok := collector.GPUPercent(r.GPU)
		return ok && f.num.match(pct)
	case FieldNetwork:
		return f.num.match(r.NetRate)
	case FieldRuntime:
		return f.num.match(float64(r.RuntimeSeconds))
	case FieldClass:
		if f.class == classSystem {
			return r.Class == collector.ClassSystem
		}
		return r.Class == collector.ClassUser
	default:
		return true
	}
}

// ParseFieldFilter parses text for one field. Numeric fields accept N,
// N+ (at least), N- (at most) and [min,max]. Name is a case-insensitive
// substring; type is System, User or All.
func ParseFieldFilter(field Field, text string) (FieldFilter, error) {
	f := FieldFilter{Field: field, Text: strings.TrimSpace(text)}
	if f.Text == "" {
		return f, nil
	}

	switch field {
	case FieldName:
		f.substr = strings.ToLower(f.Text)
		return f, nil
	case FieldClass:
		switch strings.ToLower(f.Text) {
		case "all":
			f.class = classAll
		case "system", "sys":
			f.class = classSystem
		case "user", "usr":
			f.class = classUser
		default:
			return f, filterError(field, text, "Use System, User or All")
		}
		return f, nil
	}

	unit, ok := unitParsers[field]
	if !ok {
		return f, errors.New(errors.ErrFilter,
			fmt.Sprintf("Unknown filter field %q", field),
			"Filterable fields: "+fieldList())
	}

	num, err := parseNumeric(f.Text, unit)
	if err != nil {
		return f, filterError(field, text, unit.hint)
	}
	if field == FieldCPU || field == FieldGPU {
		num.tol = percentTolerance
	}
	f.num = num
	return f, nil
}

func filterError(field Field, text, hint string) error {
	return errors.New(errors.ErrFilter,
		fmt.Sprintf("Can't make sense of %s filter %q", field, text),
		hint)
}

type unitParser struct {
	parse func(string) (float64, error)
	hint  string
}

var unitParsers = map[Field]unitParser{
	FieldPID: {
		parse: parseCount,
		hint:  "Try 100, 100+, 500- or [100,500]",
	},
	FieldCPU: {
		parse: parsePercent,
		hint:  "Try 15, 15%+, 5%- or [5,15]",
	},
	FieldGPU: {
		parse: parsePercent,
		hint:  "Try 10%+, 0%- or [5,15]",
	},
	FieldMemory: {
		parse: parseByteSize,
		hint:  "Try 100MB+, 1GB- or [100MB,1GB]",
	},
	FieldNetwork: {
		parse: parseRate,
		hint:  "Try 1KB/s+, 10MB/s- or [1KB/s,1MB/s]",
	},
	FieldRuntime: {
		parse: parseDurationText,
		hint:  "Try 3600+, 01:00:00+ or [60,1:00:00]",
	},
}

// parseNumeric handles the shared grammar: N, N+, N-, [min,max].
func parseNumeric(text string, unit unitParser) (numeric, error) {
	if strings.HasPrefix(text, "[") {
		if !strings.HasSuffix(text, "]") {
			return numeric{}, fmt.Errorf("unterminated range")
		}
		lo, hi, ok := strings.Cut(text[1:len(text)-1], ",")
		if !ok {
			return numeric{}, fmt.Errorf("range needs two bounds")
		}
		from, err := unit.parse(strings.TrimSpace(lo))
		if err != nil {
			return numeric{}, err
		}
		to, err := unit.parse(strings.TrimSpace(hi))
		if err != nil {
			return numeric{}, err
		}
		if from > to {
			return numeric{}, fmt.Errorf("range bounds reversed")
		}
		return numeric{op: opRange, min: from, max: to}, nil
	}

	switch {
	case strings.HasSuffix(text, "+"):
		v, err := unit.parse(strings.TrimSpace(strings.TrimSuffix(text, "+")))
		return numeric{op: opAtLeast, min: v}, err
	case strings.HasSuffix(text, "-") && len(text) > 1:
		v, err := unit.parse(strings.TrimSpace(strings.TrimSuffix(text, "-")))
		return numeric{op: opAtMost, max: v}, err
	default:
		v, err := unit.parse(text)
		return numeric{op: opExact, min: v, max: v}, err
	}
}

func parseCount(s string) (float64, error) {
	v, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0, err
	}
	return float64(v), nil
}

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("percentage out of range: %s", s)
	}
	return v, nil
}

// binaryUnits maps decimal-looking suffixes to their binary meaning, the
// way memory columns are displayed.
var binaryUnits = map[string]string{
	"k": "kib", "kb": "kib",
	"m": "mib", "mb": "mib",
	"g": "gib", "gb": "gib",
	"t": "tib", "tb": "tib",
}

func parseByteSize(s string) (float64, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if i == 0 {
		return 0, fmt.Errorf("missing number in %q", s)
	}

	num, unit := s, ""
	if i > 0 {
		num, unit = s[:i], strings.ToLower(strings.TrimSpace(s[i:]))
	}
	if b, ok := binaryUnits[unit]; ok {
		unit = b
	}

	v, err := humanize.ParseBytes(num + unit)
	if err != nil {
		return 0, err
	}
	return float64(v), nil
}

func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, suffix := range []string{"/s", "ps"} {
		if strings.HasSuffix(lower, suffix) {
			s = s[:len(s)-len(suffix)]
			break
		}
	}
	return parseByteSize(s)
}

// parseDurationText accepts plain seconds or the runtime column format.
func parseDurationText(s string) (float64, error) {
	if v, err := strconv.ParseUint(s, 10, 63); err == nil {
		return float64(v), nil
	}
	secs := parsers.ParseRuntime(s)
	if secs == 0 && strings.Trim(s, "0:-") != "" {
		return 0, fmt.Errorf("invalid runtime %q", s)
	}
	return float64(secs), nil
}

// Predicate is the active filter: every field filter must match. The zero
// value matches everything.
type Predicate struct {
	filters map[Field]FieldFilter
}

// Match reports whether r passes every active field filter.
func (p Predicate) Match(r collector.ProcessRecord) bool {
	for _, f := range p.filters {
		if !f.Match(r) {
			return false
		}
	}
	return true
}

// Empty reports whether no field narrows the result.
func (p Predicate) Empty() bool {
	for _, f := range p.filters {
		if f.Active() {
			return false
		}
	}
	return true
}

// With returns a copy of p with f replacing any filter on the same field.
// An inactive filter clears the field.
func (p Predicate) With(f FieldFilter) Predicate {
	next := Predicate{filters: make(map[Field]FieldFilter, len(p.filters)+1)}
	for k, v := range p.filters {
		next.filters[k] = v
	}
	if f.Active() {
		next.filters[f.Field] = f
	} else {
		delete(next.filters, f.Field)
	}
	return next
}

// Get returns the filter on field, if one is active.
func (p Predicate) Get(field Field) (FieldFilter, bool) {
	f, ok := p.filters[field]
	return f, ok
}

// Filters returns the active filters in column order.
func (p Predicate) Filters() []FieldFilter {
	out := make([]FieldFilter, 0, len(p.filters))
	for _, field := range Fields {
		if f, ok := p.filters[field]; ok {
			out = append(out, f)
		}
	}
	return out
}

// String renders the predicate back into ParsePredicate syntax.
func (p Predicate) String() string {
	parts := make([]string, 0, len(p.filters))
	for _, f := range p.Filters() {
		text := f.Text
		if strings.ContainsAny(text, " \t'\"") {
			text = strconv.Quote(text)
		}
		parts = append(parts, string(f.Field)+":"+text)
	}
	return strings.Join(parts, " ")
}

// ParsePredicate parses a filter bar expression: whitespace-separated
// "field:value" terms, e.g. `cpu:15+ mem:[100MB,1GB] name:"Google Chrome"`.
// A term without a field is a name substring. Later terms for the same
// field replace earlier ones.
func ParsePredicate(expr string) (Predicate, error) {
	var p Predicate
	if strings.TrimSpace(expr) == "" {
		return p, nil
	}

	terms, err := shlex.Split(expr)
	if err != nil {
		return p, errors.WrapWithCode(err, errors.ErrFilter,
			"Couldn't split the filter expression",
			"Check for an unmatched quote")
	}

	var names []string
	for _, term := range terms {
		key, value, ok := strings.Cut(term, ":")
		field, known := LookupField(key)
		if !ok || !known {
			names = append(names, term)
			continue
		}

		f, err := ParseFieldFilter(field, value)
		if err != nil {
			return Predicate{}, err
		}
		p = p.With(f)
	}

	if len(names) > 0 {
		f, _ := ParseFieldFilter(FieldName, strings.Join(names, " "))
		p = p.With(f)
	}

	return p, nil
}

func fieldList() string {
	names := make([]string, 0, len(Fields))
	for _, f := range Fields {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// HelpLines describes the filter grammar for help screens.
func HelpLines() []string {
	return []string{
		"Filter terms are field:value, separated by spaces.",
		"Bare words match the process name (case-insensitive).",
		"",
		"Numbers:  N exact   N+ at least   N- at most   [min,max] range",
		"",
		"pid:100+            PID 100 and up",
		"pid:[100,500]       PIDs 100 through 500",
		"cpu:15%+            15% CPU or more",
		"gpu:[5,15]          5 to 15% GPU (estimates included)",
		"mem:100MB+          at least 100 MiB resident",
		"mem:[100MB,1GB]     100 MiB to 1 GiB",
		"net:1KB/s+          at least 1 KiB/s of traffic",
		"time:01:00:00+      running for an hour or more",
		"type:System         System, User or All",
		`name:"Google Chrome" quote names with spaces`,
	}
}
