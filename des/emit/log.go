package emit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LogObserver writes events to a writer, either as human-readable text
// or as JSON Lines.
type LogObserver struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogObserver returns a LogObserver writing to writer (os.Stdout if
// nil) in text or JSON mode.
func NewLogObserver(writer io.Writer, jsonMode bool) *LogObserver {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogObserver{writer: writer, jsonMode: jsonMode}
}

func (l *LogObserver) Emit(event Event) {
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogObserver) emitJSON(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		_, _ = fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}
	_, _ = fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogObserver) emitText(event Event) {
	_, _ = fmt.Fprintf(l.writer, "[%s] model=%s rep=%d t=%g element=%s",
		event.Msg, event.ModelName, event.Replication, event.Time, event.ElementName)
	if len(event.Meta) > 0 {
		if metaJSON, err := json.Marshal(event.Meta); err == nil {
			_, _ = fmt.Fprintf(l.writer, " meta=%s", metaJSON)
		}
	}
	_, _ = fmt.Fprint(l.writer, "\n")
}

func (l *LogObserver) EmitBatch(_ context.Context, events []Event) error {
	for _, event := range events {
		l.Emit(event)
	}
	return nil
}

// Flush is a no-op: LogObserver writes synchronously.
func (l *LogObserver) Flush(context.Context) error { return nil }
