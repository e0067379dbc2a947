package logger

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Log entry field names.
const (
	FieldSessionID       = "session_id"
	FieldTimestampMicros = "timestamp_micros"
	FieldLine            = "line"
	FieldTopology        = "topology"
	FieldPrograms        = "programs"
	FieldOutcome         = "outcome"
	FieldStatus          = "status"
	FieldPID             = "pid"
	FieldDurationMicros  = "duration_micros"
)

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(le *structpb.Struct) error

// Logger captures the lines run by the interpreter.
type Logger struct {
	Record LogRecorder

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewJsonLinesLogRecorder creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	marshaler := protojson.MarshalOptions{Multiline: false}

	return &Logger{
		Record: func(le *structpb.Struct) error {
			entry, err := marshaler.Marshal(le)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NopLogger discards every entry.
func NopLogger() *Logger {
	return &Logger{
		Record: func(*structpb.Struct) error { return nil },
	}
}

func (l *Logger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// NewSession creates a logger with a fresh, time ordered session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: ulid.Make().String()}
}

// SessionLogger logs entries with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
}

// SessionID returns the ID attached to every entry.
func (s *SessionLogger) SessionID() string {
	return s.sessionID
}

// Command describes one executed input line.
type Command struct {
	Line     string
	Topology string
	Programs []string
	Outcome  string
	Status   int
	PID      int
	Duration time.Duration
}

// LogCommand records an executed line.
func (s *SessionLogger) LogCommand(cmd Command) error {
	programs := make([]interface{}, len(cmd.Programs))
	for i, p := range cmd.Programs {
		programs[i] = p
	}

	fields := map[string]interface{}{
		FieldSessionID:       s.sessionID,
		FieldTimestampMicros: s.now().UnixMicro(),
		FieldLine:            cmd.Line,
		FieldTopology:        cmd.Topology,
		FieldPrograms:        programs,
		FieldOutcome:         cmd.Outcome,
		FieldStatus:          cmd.Status,
		FieldDurationMicros:  cmd.Duration.Microseconds(),
	}
	if cmd.PID != 0 {
		fields[FieldPID] = cmd.PID
	}

	le, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}
	return s.Record(le)
}
