package markup

import (
	"strings"
	"testing"
	"time"
)

func TestEncodeCreated(t *testing.T) {
	out, err := EncodeCreated("patient", testPatient{ID: "p-1", CPR: "1", Name: "N", DOB: "D"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<root>\n" +
		"  <ok>true</ok>\n" +
		"  <patient>\n" +
		"    <id>p-1</id>\n" +
		"    <cpr>1</cpr>\n" +
		"    <name>N</name>\n" +
		"    <dob>D</dob>\n" +
		"  </patient>\n" +
		"</root>"
	if string(out) != want {
		t.Errorf("unexpected body:\n%s\nwant:\n%s", out, want)
	}
}

func TestEncodeError_Escapes(t *testing.T) {
	got := string(EncodeError(`cpr <x> & "y"`))
	if !strings.HasPrefix(got, "<error>") || !strings.HasSuffix(got, "</error>") {
		t.Fatalf("unexpected error document %q", got)
	}
	if strings.Contains(got, "<x>") {
		t.Errorf("expected markup in message to be escaped, got %q", got)
	}
	if !strings.Contains(got, "&lt;x&gt; &amp;") {
		t.Errorf("expected escaped entities, got %q", got)
	}
}

func TestEncodeHealth(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 30, 0, 123456789, time.FixedZone("CEST", 2*60*60))
	got := string(EncodeHealth(now))
	want := `<health ok="true"><time>2026-10-17T06:30:00.123Z</time></health>`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestTimestamp_UTCMillis(t *testing.T) {
	ts := Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	if ts != "2024-01-02T03:04:05.000Z" {
		t.Errorf("unexpected timestamp %q", ts)
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Errorf("timestamp is not RFC 3339: %v", err)
	}
}
