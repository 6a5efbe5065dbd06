// Package outformat implements the --out-format %-token template grammar
// and the itemize-changes string, grounded on the teacher's default
// out-format assignment logic (rsyncopts's stdout_format defaulting to the
// itemize template whenever -v/--itemize-changes imply verbose per-file
// output).
package outformat

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Operation is the verb rendered by %o.
type Operation int

const (
	OpSend Operation = iota
	OpRecv
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpSend:
		return "send"
	case OpRecv:
		return "recv"
	case OpDelete:
		return "del."
	default:
		return "?"
	}
}

// Entry carries everything a template token might need for one rendered
// line; fields not relevant to a given transfer are left at their zero
// value (e.g. Checksum empty for a directory).
type Entry struct {
	RelPath      string
	SymlinkTarget string // empty if not a symlink
	BytesXfer    int64
	Length       int64
	Operation    Operation
	ModTime      time.Time
	Mode         uint32
	UID, GID     int
	UserName, GroupName string
	Itemized     string // YXcstpoguax-style string, or "*deleting"
	Checksum     [16]byte
	HasChecksum  bool
}

// DefaultItemizeTemplate is the default --itemize-changes rendering.
const DefaultItemizeTemplate = "%i %n%L"

// Render expands template against e. Unknown %x verbs are a parse-time
// error surfaced by Validate, not by Render, so Render assumes template was
// already validated.
func Render(template string, e Entry) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' || i == len(template)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		b.WriteString(renderToken(template[i], e))
	}
	return b.String()
}

func renderToken(tok byte, e Entry) string {
	switch tok {
	case 'f', 'n':
		return e.RelPath
	case 'b':
		return strconv.FormatInt(e.BytesXfer, 10)
	case 'c':
		return strconv.FormatInt(e.BytesXfer, 10)
	case 'l':
		return strconv.FormatInt(e.Length, 10)
	case 'L':
		if e.SymlinkTarget == "" {
			return ""
		}
		return " -> " + e.SymlinkTarget
	case 'N':
		if e.SymlinkTarget == "" {
			return e.RelPath
		}
		return e.RelPath + " -> " + e.SymlinkTarget
	case 'o':
		return e.Operation.String()
	case 'M':
		return e.ModTime.Format("2006/01/02 15:04:05")
	case 'B':
		return permString(e.Mode)
	case 'p':
		return strconv.Itoa(os.Getpid())
	case 'u':
		if e.UserName != "" {
			return e.UserName
		}
		return strconv.Itoa(e.UID)
	case 'g':
		if e.GroupName != "" {
			return e.GroupName
		}
		return strconv.Itoa(e.GID)
	case 'U':
		return strconv.Itoa(e.UID)
	case 'G':
		return strconv.Itoa(e.GID)
	case 't':
		return time.Now().Format("2006/01/02 15:04:05")
	case 'i':
		if e.Itemized != "" {
			return e.Itemized
		}
		return "*deleting"
	case 'C':
		if !e.HasChecksum {
			return strings.Repeat(" ", 32)
		}
		return fmt.Sprintf("%x", e.Checksum)
	case 'h', 'a', 'm', 'P':
		return "%" + string(tok)
	case '%':
		return "%"
	default:
		return "%" + string(tok)
	}
}

// permString renders mode as a POSIX "rwxr-x---" style string with
// setuid/setgid/sticky bits folded in as s/S/t/T.
func permString(mode uint32) string {
	const (
		setuid = 1 << 11
		setgid = 1 << 10
		sticky = 1 << 9
	)
	bits := []struct {
		mask uint32
		c    byte
	}{
		{1 << 8, 'r'}, {1 << 7, 'w'}, {1 << 6, 'x'},
		{1 << 5, 'r'}, {1 << 4, 'w'}, {1 << 3, 'x'},
		{1 << 2, 'r'}, {1 << 1, 'w'}, {1 << 0, 'x'},
	}
	var b strings.Builder
	for idx, bit := range bits {
		if mode&bit.mask != 0 {
			b.WriteByte(bit.c)
		} else {
			b.WriteByte('-')
		}
		if idx == 2 && mode&setuid != 0 {
			overwriteExecBit(&b, mode&(1<<6) != 0, 's', 'S')
		}
		if idx == 5 && mode&setgid != 0 {
			overwriteExecBit(&b, mode&(1<<3) != 0, 's', 'S')
		}
		if idx == 8 && mode&sticky != 0 {
			overwriteExecBit(&b, mode&(1<<0) != 0, 't', 'T')
		}
	}
	return b.String()
}

func overwriteExecBit(b *strings.Builder, execSet bool, lower, upper byte) {
	s := b.String()
	repl := upper
	if execSet {
		repl = lower
	}
	b.Reset()
	b.WriteString(s[:len(s)-1])
	b.WriteByte(repl)
}

// Validate reports a parse error for any %x token outside the recognized
// set, matching §4.11's "unknown %x → parse-time error" rule.
func Validate(template string) error {
	known := "fnbclLNoMBpugUGtiChamP%"
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i == len(template)-1 {
			return fmt.Errorf("out-format template %q: trailing %%", template)
		}
		i++
		if strings.IndexByte(known, template[i]) < 0 {
			return fmt.Errorf("out-format template %q: unknown token %%%c", template, template[i])
		}
	}
	return nil
}
