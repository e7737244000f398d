package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/errors"
	"github.com/mattn/go-isatty"
)

var _ Sink = (*plainSink)(nil)

var colours = map[Level]string{
	Trace: "\x1b[90m",
	Debug: "\x1b[34m",
	Info:  "\x1b[37m",
	Warn:  "\x1b[33m",
	Error: "\x1b[31m",
}

func newPlainSink(w io.Writer) *plainSink {
	var isaTTY bool
	if f, ok := w.(*os.File); ok {
		isaTTY = isatty.IsTerminal(f.Fd())
	}
	return &plainSink{
		w:      w,
		isaTTY: isaTTY,
	}
}

type plainSink struct {
	w      io.Writer
	isaTTY bool
}

// Log formats an entry as "level:scope: message" with any remaining attributes appended.
func (t *plainSink) Log(entry Entry) error {
	var prefix strings.Builder
	prefix.WriteString(entry.Level.String())
	if scope, ok := entry.Attributes[scopeKey]; ok {
		prefix.WriteString(":" + scope)
	}
	var attrs []string
	for k, v := range entry.Attributes {
		if k == scopeKey {
			continue
		}
		attrs = append(attrs, k+"="+v)
	}
	sort.Strings(attrs)
	line := prefix.String() + ": " + entry.Message
	if len(attrs) > 0 {
		line += " (" + strings.Join(attrs, " ") + ")"
	}
	var err error
	if t.isaTTY {
		_, err = fmt.Fprintf(t.w, "%s%s\x1b[0m\n", colours[entry.Level], line)
	} else {
		_, err = fmt.Fprintln(t.w, line)
	}
	return errors.WithStack(err)
}
