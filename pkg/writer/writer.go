// Package writer implements the final pipeline stage: it receives entries
// in the order the driver decides to release them and decides, entry by
// entry, whether to show it, skip it, or emit a separator summarising a
// run of skipped entries, honouring an optional surrounding context
// window.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/bascanada/yategrep/pkg/entry"
	"github.com/bascanada/yategrep/pkg/logbuf"
)

// htmlEscaper replaces <, >, &, " with their entities, matching the
// original escape filter's narrower four-entity set (single quotes are
// left alone).
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// bold wraps marked entries in ANSI SGR bold in plain-text mode. Disabled
// automatically by color.NoColor (set by InitColorState per TTY/NO_COLOR state).
var bold = color.New(color.Bold)

// Mode selects the output framing.
type Mode int

const (
	// Plain emits entries byte-identical to their captured text.
	Plain Mode = iota
	// XHTML wraps each entry in a <pre class="TYPE[ marked]"> block.
	XHTML
	// XHTMLDocument is XHTML plus a full HTML document frame.
	XHTMLDocument
)

// Writer is the sink at the end of the pipeline. It owns every Entry
// passed to Eat and is responsible for destroying it once emitted or
// dropped.
type Writer struct {
	out  io.Writer
	mode Mode

	context int
	ctxBuf  *logbuf.LogBuf

	// tailcount counts down the "after" entries still owed following the
	// most recent match; ctxBuf holds up to context unmarked
	// entries as candidate "before" context for a match that hasn't
	// arrived yet.
	tailcount int
	skipped   int

	wroteFrame bool

	// ExpandJSON pretty-prints embedded {...} JSON blocks found within an
	// entry's verbatim text, per --expand-json.
	ExpandJSON bool
}

// New builds a Writer over out. context is the number of entries to show
// before and after each match; 0 disables the context window entirely
// (every unmarked entry is then subject to skip-summarising).
func New(out io.Writer, mode Mode, context int) *Writer {
	w := &Writer{out: out, mode: mode, context: context}
	if context > 0 {
		w.ctxBuf = logbuf.New(context)
	}
	if mode == XHTMLDocument {
		w.writeFramePrelude()
	}
	return w
}

// Eat consumes one Entry, taking ownership of it.
func (w *Writer) Eat(e *entry.Entry) {
	if e.Marked {
		w.emitBeforeBuffer()
		w.render(e)
		w.skipped = 0
		w.tailcount = w.context
		return
	}

	if w.tailcount > 0 {
		w.render(e)
		w.skipped = 0
		w.tailcount--
		return
	}

	if w.ctxBuf == nil {
		w.skipped++
		return
	}

	if evicted := w.ctxBuf.PushPop(e); evicted != nil {
		w.skipped++
	}
}

// emitBeforeBuffer flushes any skip separator due, then renders every
// entry currently held as "before" context, oldest first, since a match
// has just arrived to claim them.
func (w *Writer) emitBeforeBuffer() {
	if w.ctxBuf == nil {
		w.flushSkipSeparator()
		return
	}
	var pending []*entry.Entry
	for {
		e := w.ctxBuf.Pop()
		if e == nil {
			break
		}
		pending = append(pending, e)
	}
	w.flushSkipSeparator()
	for _, e := range pending {
		w.render(e)
	}
}

// Close drains any entries still held in the context buffer and, if a
// skip run was in progress, emits the final separator. It also appends
// the XHTML document postlude in XHTMLDocument mode.
func (w *Writer) Close() {
	if w.ctxBuf != nil {
		for {
			e := w.ctxBuf.Pop()
			if e == nil {
				break
			}
			w.skipped++
		}
		w.ctxBuf.Close()
	}
	w.flushSkipSeparator()
	if w.mode == XHTMLDocument && w.wroteFrame {
		fmt.Fprint(w.out, "</body></html>\n")
	}
}

func (w *Writer) flushSkipSeparator() {
	if w.skipped > 0 {
		fmt.Fprintf(w.out, " ... skipped %d log entries ...\n", w.skipped)
		w.skipped = 0
	}
}

func (w *Writer) render(e *entry.Entry) {
	text := e.Text
	if w.ExpandJSON {
		text = expandEmbeddedJSON(text)
	}

	switch w.mode {
	case XHTML, XHTMLDocument:
		class := e.Type.String()
		if e.Marked {
			class += " marked"
		}
		fmt.Fprintf(w.out, "<pre class=\"%s\">%s</pre>\n", class, htmlEscaper.Replace(text))
	default:
		if e.Marked && w.context > 0 {
			fmt.Fprint(w.out, bold.Sprint(text))
		} else {
			fmt.Fprint(w.out, text)
		}
	}
}

func (w *Writer) writeFramePrelude() {
	w.wroteFrame = true
	fmt.Fprint(w.out, xhtmlPrelude)
}

const xhtmlPrelude = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
.message { color: #004080; }
.network { color: #008040; }
.startup { color: #804000; }
.marked { font-weight: bold; }
</style>
</head>
<body>
`
