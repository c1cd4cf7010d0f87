package writer

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// InitColorState decides whether ANSI bold output is active, in priority
// order: an explicit CLI setting, the NO_COLOR convention, then TTY
// detection on the output file; anything else defaults to off.
func InitColorState(explicit *bool, out io.Writer) {
	if explicit != nil {
		color.NoColor = !*explicit
		return
	}
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
		return
	}
	if f, ok := out.(*os.File); ok {
		color.NoColor = !isatty.IsTerminal(f.Fd())
		return
	}
	color.NoColor = true
}
