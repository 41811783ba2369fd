package parsers

import (
	"bufio"
	"context"
	"strconv"
	"strings"
)

// NetCounters are cumulative per-process byte counters.
type NetCounters struct {
	BytesIn  int64
	BytesOut int64
}

// Total is inbound plus outbound bytes.
func (c NetCounters) Total() int64 {
	return c.BytesIn + c.BytesOut
}

// ParseNettop parses "nettop -P -L1 -x" CSV output. Field 1 is
// "name.pid", fields 4 and 5 are bytes in and out. Rows for the same PID
// are summed. Header rows and rows that do not parse are skipped.
func ParseNettop(ctx context.Context, output string) (map[int]NetCounters, error) {
	result := make(map[int]NetCounters)
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fields := strings.Split(scanner.Text(), ",")
		if len(fields) < 6 {
			continue
		}

		pid, ok := pidFromProcessField(fields[1])
		if !ok {
			continue
		}

		in, errIn := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
		out, errOut := strconv.ParseInt(strings.TrimSpace(fields[5]), 10, 64)
		if errIn != nil || errOut != nil || in < 0 || out < 0 {
			continue
		}

		c := result[pid]
		c.BytesIn += in
		c.BytesOut += out
		result[pid] = c
	}

	return result, scanner.Err()
}

// pidFromProcessField reads the PID after the last dot of "name.pid".
// Process names may themselves contain dots ("com.apple.WebKit.42").
func pidFromProcessField(field string) (int, bool) {
	field = strings.TrimSpace(field)
	dot := strings.LastIndexByte(field, '.')
	if dot < 0 || dot == len(field)-1 {
		return 0, false
	}
	pid, err := strconv.Atoi(field[dot+1:])
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
