package main

import (
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/walletstats/internal/jobclient"
	"golang.org/x/term"
)

// consoleNotifier writes job notifications as single lines, coloured when
// the destination is a terminal.
type consoleNotifier struct {
	out   io.Writer
	color bool
}

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out, color: useColor(out)}
}

// Notify implements jobclient.NotificationSink.
func (n *consoleNotifier) Notify(message string, kind jobclient.NotificationKind) {
	prefix := "ok"
	code := "32"
	if kind == jobclient.NotificationError {
		prefix = "error"
		code = "31"
	}
	if n.color {
		prefix = "\x1b[" + code + "m" + prefix + "\x1b[0m"
	}
	fmt.Fprintf(n.out, "%s: %s\n", prefix, message)
}

func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
