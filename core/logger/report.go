package logger

import (
	"encoding/json"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *structpb.Struct)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var rawEntry json.RawMessage
		if err := decoder.Decode(&rawEntry); err != nil {
			return err
		}

		var logEntry structpb.Struct
		if err := protojson.Unmarshal(rawEntry, &logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// StrCounter counts occurrences of strings.
type StrCounter map[string]int

// Increment adds one to key.
func (s StrCounter) Increment(key string) {
	s[key]++
}

// Report holds statistics about the logged lines.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries int        `json:"invalid_entries,omitempty"`
	Sessions       StrCounter `json:"sessions"`
	Topologies     StrCounter `json:"topologies"`
	Outcomes       StrCounter `json:"outcomes"`

	// Failures counts lines with a non-zero status by their first program.
	Failures StrCounter `json:"failures"`
	// UnknownPrograms counts lines whose command couldn't be spawned.
	UnknownPrograms StrCounter `json:"unknown_programs"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		Sessions:        make(StrCounter),
		Topologies:      make(StrCounter),
		Outcomes:        make(StrCounter),
		Failures:        make(StrCounter),
		UnknownPrograms: make(StrCounter),
	}
}

// Update adds an entry to the report.
func (r *Report) Update(le *structpb.Struct) {
	r.LogEntries++

	fields := le.GetFields()
	topology := fields[FieldTopology].GetStringValue()
	programs := fields[FieldPrograms].GetListValue().GetValues()
	if topology == "" || len(programs) == 0 {
		r.InvalidEntries++
		return
	}
	program := programs[0].GetStringValue()

	r.Sessions.Increment(fields[FieldSessionID].GetStringValue())
	r.Topologies.Increment(topology)

	outcome := fields[FieldOutcome].GetStringValue()
	r.Outcomes.Increment(outcome)
	if outcome == "spawn_failed" {
		r.UnknownPrograms.Increment(program)
	}
	if fields[FieldStatus].GetNumberValue() != 0 {
		r.Failures.Increment(program)
	}
}

// Summarize builds a report from a JSON lines log.
func Summarize(r io.Reader) (*Report, error) {
	report := NewReport()
	if err := ReadJSONLinesLog(r, report.Update); err != nil {
		return nil, err
	}
	return report, nil
}
