package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with "Warning: ", in bold yellow when w is a terminal.
func warningf(w io.Writer, format string, a ...interface{}) {
	prefix := color.New(color.Bold, color.FgYellow)
	if !isTerminal(w) {
		prefix.DisableColor()
	}
	//nolint:errcheck
	prefix.Fprint(w, "Warning: ")
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
