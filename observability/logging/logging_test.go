package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestSetupWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("treasured", "test", WithWriter(&buf))
	logger.Info("applied", "action", "settle", MaskField("memo", "Unlock Treasure No.1-secret"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["message"] != "applied" || line["severity"] != "INFO" {
		t.Fatalf("unexpected envelope %v", line)
	}
	if line["service"] != "treasured" || line["env"] != "test" {
		t.Fatalf("missing service attributes %v", line)
	}
	if line["memo"] != RedactedValue {
		t.Fatalf("memo should be redacted, got %v", line["memo"])
	}
	if _, ok := line["timestamp"]; !ok {
		t.Fatalf("missing timestamp")
	}
}

func TestMaskFieldAllowlist(t *testing.T) {
	if got := MaskField("action", "settle"); got.Value.String() != "settle" {
		t.Fatalf("allowlisted key should pass through")
	}
	if got := MaskField("secret", "abc"); got.Value.String() != RedactedValue {
		t.Fatalf("secret should be masked")
	}
	if got := MaskField("secret", " "); got.Value.String() != " " {
		t.Fatalf("blank values stay untouched")
	}
}
