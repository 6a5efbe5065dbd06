package outformat

import (
	"strings"
	"testing"
)

func TestStatsRenderOmitsTransferCountsWhenZero(t *testing.T) {
	s := Stats{RegularFiles: 3, Directories: 1}
	out := s.Render()
	if strings.Contains(out, "regular files transferred") {
		t.Fatalf("expected transferred line omitted when zero: %s", out)
	}
}

func TestStatsRenderIncludesTransferCounts(t *testing.T) {
	s := Stats{RegularFilesTransferred: 2, RegularFilesMatched: 1}
	out := s.Render()
	if !strings.Contains(out, "Number of regular files transferred: 2") {
		t.Fatalf("missing transferred count: %s", out)
	}
}

func TestStatsRenderOrder(t *testing.T) {
	s := Stats{RegularFiles: 1, BytesSent: 10, BytesReceived: 20, TotalSize: 100}
	out := s.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "sent 10 bytes received 20 bytes total size is 100") {
		t.Fatalf("final line = %q", last)
	}
}
