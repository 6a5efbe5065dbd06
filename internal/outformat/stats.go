package outformat

import (
	"fmt"
	"strings"
	"time"
)

// Stats holds the counters the --stats summary block reports, in the
// field order §4.11 mandates.
type Stats struct {
	RegularFiles, Directories, Symlinks, Devices, Specials int
	FilesCreated, FilesDeleted                             int
	RegularFilesTransferred, RegularFilesMatched            int
	TotalSize, LiteralData, MatchedData                     int64
	FileListSize                                            int64
	FileListGenTime, FileListXferTime                       time.Duration
	BytesSent, BytesReceived                                int64
}

// Render produces the multi-line --stats block, in the order §4.11
// specifies: counts by kind, created/deleted, transfer/match counts
// (omitted when zero), sizes, timings, and the final summary line.
func (s Stats) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Number of files: %d (reg: %d, dir: %d, link: %d, dev: %d, special: %d)\n",
		s.RegularFiles+s.Directories+s.Symlinks+s.Devices+s.Specials,
		s.RegularFiles, s.Directories, s.Symlinks, s.Devices, s.Specials)
	fmt.Fprintf(&b, "Number of created files: %d\n", s.FilesCreated)
	fmt.Fprintf(&b, "Number of deleted files: %d\n", s.FilesDeleted)
	if s.RegularFilesTransferred != 0 || s.RegularFilesMatched != 0 {
		fmt.Fprintf(&b, "Number of regular files transferred: %d\n", s.RegularFilesTransferred)
		fmt.Fprintf(&b, "Number of regular files matched: %d\n", s.RegularFilesMatched)
	}
	fmt.Fprintf(&b, "Total file size: %d bytes\n", s.TotalSize)
	fmt.Fprintf(&b, "Literal data: %d bytes\n", s.LiteralData)
	fmt.Fprintf(&b, "Matched data: %d bytes\n", s.MatchedData)
	fmt.Fprintf(&b, "File list size: %d\n", s.FileListSize)
	fmt.Fprintf(&b, "File list generation time: %s\n", durationHMS(s.FileListGenTime))
	fmt.Fprintf(&b, "File list transfer time: %s\n", durationHMS(s.FileListXferTime))
	fmt.Fprintf(&b, "Total bytes sent: %d\n", s.BytesSent)
	fmt.Fprintf(&b, "Total bytes received: %d\n", s.BytesReceived)
	fmt.Fprintf(&b, "%s\n", s.summaryLine())
	return b.String()
}

// SummaryLine renders the final "sent X bytes received Y bytes..." line on
// its own, for callers that emit it without the rest of the --stats block.
func (s Stats) SummaryLine() string {
	return s.summaryLine()
}

func (s Stats) summaryLine() string {
	speedup := 0.0
	if s.BytesSent+s.BytesReceived > 0 {
		speedup = float64(s.TotalSize) / float64(s.BytesSent+s.BytesReceived)
	}
	return fmt.Sprintf("sent %d bytes received %d bytes total size is %d speedup is %.2f",
		s.BytesSent, s.BytesReceived, s.TotalSize, speedup)
}

func durationHMS(d time.Duration) string {
	total := d.Seconds()
	h := int(total) / 3600
	m := (int(total) % 3600) / 60
	sec := total - float64(h*3600+m*60)
	return fmt.Sprintf("%d:%02d:%06.3f", h, m, sec)
}
