// Package importer reads recorded sensor samples from delimited text files.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

// ErrNoTimestamp is returned when the header has no timestamp column
var ErrNoTimestamp = errors.New("file must have a unix_ts or timestamp column")

// ErrNoSamples is returned when no row could be parsed
var ErrNoSamples = errors.New("no valid samples found")

// epoch seconds stay below this; milliseconds are far above it
const secondsCutoff = 100_000_000_000

var timestampColumns = []string{"unix_ts", "timestamp", "time", "epoch", "epoch_ms", "ts"}

// Result is the outcome of reading one file
type Result struct {
	Samples []analysis.Sample
	Rows    int // data rows seen
	Skipped int // rows without a usable timestamp
}

// ReadFile parses the file at path
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses a header row followed by one sample per row. The delimiter is
// whichever of comma, semicolon or tab appears most in the header. Samples
// come back sorted by timestamp.
func Read(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	header, err := peekHeader(br)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(header)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := columnIndex(names)

	tsCol := -1
	for _, name := range timestampColumns {
		if i, ok := cols[name]; ok {
			tsCol = i
			break
		}
	}
	if tsCol < 0 {
		return nil, ErrNoTimestamp
	}

	res := &Result{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", res.Rows+2, err)
		}
		if isBlank(record) {
			continue
		}
		res.Rows++

		ts, ok := parseTimestamp(field(record, tsCol))
		if !ok {
			res.Skipped++
			continue
		}
		res.Samples = append(res.Samples, analysis.Sample{
			Timestamp:  ts,
			AccelX:     optional(record, cols, "accel_x"),
			AccelY:     optional(record, cols, "accel_y"),
			AccelZ:     optional(record, cols, "accel_z"),
			GyroX:      optional(record, cols, "gyro_x"),
			GyroY:      optional(record, cols, "gyro_y"),
			GyroZ:      optional(record, cols, "gyro_z"),
			HeartRate:  optional(record, cols, "heart_rate"),
			StrokeType: strings.TrimSpace(fieldByName(record, cols, "stroke_type")),
		})
	}

	if len(res.Samples) == 0 {
		return nil, ErrNoSamples
	}
	sort.SliceStable(res.Samples, func(i, j int) bool {
		return res.Samples[i].Timestamp < res.Samples[j].Timestamp
	})
	return res, nil
}

// peekHeader returns the first line without consuming it, dropping a UTF-8 BOM
func peekHeader(br *bufio.Reader) (string, error) {
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	for n := 64; ; n *= 2 {
		buf, err := br.Peek(n)
		if i := bytes.IndexByte(buf, '\n'); i >= 0 {
			return string(buf[:i]), nil
		}
		if err != nil {
			if len(buf) == 0 {
				return "", ErrNoSamples
			}
			return string(buf), nil
		}
	}
}

func detectDelimiter(line string) rune {
	best, bestCount := ',', -1
	for _, c := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func columnIndex(names []string) map[string]int {
	cols := make(map[string]int, len(names))
	for i, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func fieldByName(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok {
		return ""
	}
	return field(record, i)
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "\u00a0", "")
}

// parseTimestamp accepts epoch milliseconds or seconds, integer or decimal
func parseTimestamp(s string) (int64, bool) {
	s = cleanNumber(s)
	if s == "" {
		return 0, false
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || !finite(f) {
			return 0, false
		}
		if f < secondsCutoff {
			return int64(f * 1000), true
		}
		ts = int64(f)
	}
	if ts < secondsCutoff {
		ts *= 1000
	}
	return ts, true
}

func optional(record []string, cols map[string]int, name string) *float64 {
	s := cleanNumber(fieldByName(record, cols, name))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return nil
	}
	return &v
}

// ParseFloat accepts inf and nan; neither is a reading
func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
