/*
Copyright 2022 The Katalyst Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package trace loads the per-access latency traces recorded on the
// interconnect and selects records by access identifier.
package trace

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/kubewharf/katalyst-membound/pkg/consts"
)

// ErrSchema is returned when a trace does not carry the expected columns.
var ErrSchema = errors.New("trace schema mismatch")

// Schema names the columns a trace must provide.
type Schema struct {
	Delimiter     rune
	IDColumn      string
	AccessColumn  string
	ChannelColumn string
}

// DefaultSchema returns the schema written by the trace monitor.
func DefaultSchema() Schema {
	return Schema{
		Delimiter:     rune(consts.DefaultTraceDelimiter[0]),
		IDColumn:      consts.DefaultTraceIDColumn,
		AccessColumn:  consts.DefaultTraceAccessColumn,
		ChannelColumn: consts.DefaultTraceChannelColumn,
	}
}

func (s Schema) columns() []string {
	return []string{s.IDColumn, s.AccessColumn, s.ChannelColumn}
}

// Record is one access observed on the interconnect.
type Record struct {
	ID      int64
	Access  int64
	Channel int64
}

// Total is the end-to-end latency of the access in cycles.
func (r Record) Total() int64 {
	return r.Access + r.Channel
}

// Trace is a loaded trace file.
type Trace struct {
	Path    string
	Digest  uint64
	Records []Record
}

// Load reads and parses the trace at path.
func Load(path string, schema Schema) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read trace %s", path)
	}

	records, err := Parse(bytes.NewReader(data), path, schema)
	if err != nil {
		return nil, err
	}

	return &Trace{
		Path:    path,
		Digest:  xxhash.Sum64(data),
		Records: records,
	}, nil
}

// Parse decodes delimited trace text. name is only used in errors.
func Parse(r io.Reader, name string, schema Schema) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = schema.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrapf(ErrSchema, "trace %s is empty", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read header of trace %s", name)
	}

	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.TrimSpace(column)] = i
	}

	positions := make([]int, 0, 3)
	for _, column := range schema.columns() {
		i, ok := index[column]
		if !ok {
			return nil, errors.Wrapf(ErrSchema, "trace %s has no column %q (header %v)", name, column, header)
		}
		positions = append(positions, i)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read trace %s", name)
		}

		line, _ := reader.FieldPos(0)
		values := make([]int64, len(positions))
		for i, pos := range positions {
			if pos >= len(row) {
				return nil, errors.Errorf("trace %s line %d: missing column %q", name, line, schema.columns()[i])
			}
			v, err := parseCycles(row[pos])
			if err != nil {
				return nil, errors.Wrapf(err, "trace %s line %d column %q", name, line, schema.columns()[i])
			}
			values[i] = v
		}

		records = append(records, Record{ID: values[0], Access: values[1], Channel: values[2]})
	}

	return records, nil
}

// parseCycles accepts integers and integral floats, which some exporters emit.
func parseCycles(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("%q is not a number", s)
	}
	if f != float64(int64(f)) {
		return 0, errors.Errorf("%q is not a whole number of cycles", s)
	}
	return int64(f), nil
}

// Select returns the records whose identifier falls in r, in file order.
func (t *Trace) Select(r IDRange) []Record {
	return lo.Filter(t.Records, func(rec Record, _ int) bool {
		return r.Contains(rec.ID)
	})
}

// Totals maps records to their end-to-end latency.
func Totals(records []Record) []float64 {
	return lo.Map(records, func(rec Record, _ int) float64 {
		return float64(rec.Total())
	})
}
