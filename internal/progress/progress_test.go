package progress

import (
	"bytes"
	"testing"
	"time"
)

func TestPercentStringUnknownTotal(t *testing.T) {
	if got := percentString(10, -1); got != "??%" {
		t.Fatalf("got %q, want ??%%", got)
	}
}

func TestPercentStringKnownTotal(t *testing.T) {
	if got := percentString(50, 100); got != "50%" {
		t.Fatalf("got %q, want 50%%", got)
	}
}

func TestRateStringZeroOverNonzeroDuration(t *testing.T) {
	got := rateString(0, 5*time.Second, HumanReadableDisabled)
	if got != "0.00kB/s" {
		t.Fatalf("got %q, want 0.00kB/s", got)
	}
	got2 := rateString(0, 5*time.Second, HumanReadableEnabled)
	if got2 != "0.00B/s" {
		t.Fatalf("got %q, want 0.00B/s", got2)
	}
}

func TestFormatCountModes(t *testing.T) {
	if got := formatCount(1536, HumanReadableDisabled); got != "1,536" {
		t.Fatalf("disabled: got %q", got)
	}
	if got := formatCount(1536, HumanReadableEnabled); got != "1.54K" {
		t.Fatalf("enabled: got %q", got)
	}
	if got := formatCount(1536, HumanReadableCombined); got != "1.54K (1,536)" {
		t.Fatalf("combined: got %q", got)
	}
}

func TestPerFileUpdateWritesCRTerminated(t *testing.T) {
	var buf bytes.Buffer
	start := time.Unix(0, 0)
	o := New(&buf, ModePerFile, HumanReadableDisabled, start)
	o.PerFileUpdate(100, 200, start.Add(time.Second), false, 0, 0)
	o.PerFileUpdate(200, 200, start.Add(2*time.Second), true, 1, 3)
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("\r")) {
		t.Fatalf("expected carriage return between updates, got %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("xfr#1")) {
		t.Fatalf("expected xfr# suffix on completion, got %q", out)
	}
}

func TestOverallUpdateNoPerFileSuffix(t *testing.T) {
	var buf bytes.Buffer
	start := time.Unix(0, 0)
	o := New(&buf, ModeOverall, HumanReadableDisabled, start)
	o.OverallUpdate(500, 1000, start.Add(time.Second))
	if bytes.Contains(buf.Bytes(), []byte("xfr#")) {
		t.Fatalf("overall mode must not emit per-file xfr# suffix, got %q", buf.String())
	}
}
