package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogObserverTextMode(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(&buf, false)
	obs.Emit(Event{ModelName: "m1", Replication: 1, Time: 3.5, ElementName: "server", Msg: "Warmup"})

	out := buf.String()
	if !strings.Contains(out, "[Warmup]") || !strings.Contains(out, "element=server") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestLogObserverJSONMode(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(&buf, true)
	obs.Emit(Event{ModelName: "m1", Msg: "dispatch", EventID: 7})

	var decoded Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.EventID != 7 || decoded.Msg != "dispatch" {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}
