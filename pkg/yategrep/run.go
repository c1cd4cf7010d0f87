package yategrep

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bascanada/yategrep/pkg/entry"
	"github.com/bascanada/yategrep/pkg/follow"
	"github.com/bascanada/yategrep/pkg/grep"
	mylog "github.com/bascanada/yategrep/pkg/log"
	"github.com/bascanada/yategrep/pkg/parser"
	"github.com/bascanada/yategrep/pkg/query"
	"github.com/bascanada/yategrep/pkg/writer"
)

// Options collects every CLI-level knob that shapes a run, gathering the
// -o/-D/-x/-X/-C/-B/-N flags plus the supplemented follow/copy/expand-json
// switches into one value cmd can build from cobra flags.
type Options struct {
	Query      string
	Input      string
	Output     string
	BufferSize int
	Context    int
	NoNetwork  bool
	DumpOnFlush bool
	Mode       writer.Mode
	Follow     bool
	Copy       bool
	ExpandJSON bool
	Color      *bool
}

// ParseQuery parses the CLI's single positional "key=value" query operand.
func ParseQuery(raw string) ([]entry.Param, error) {
	idx := strings.IndexByte(raw, '=')
	if idx <= 0 {
		return nil, fmt.Errorf("%w: %w: query must be key=value, got %q", ErrArgument, ErrMalformedQuery, raw)
	}
	return []entry.Param{{Name: raw[:idx], Value: raw[idx+1:]}}, nil
}

// Run executes one end-to-end pass: open input and output per opts,
// build the Parser/Query/Writer, and drive the grep pipeline.
func Run(opts Options) error {
	if opts.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrArgument, opts.BufferSize)
	}

	params, err := ParseQuery(opts.Query)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(opts.Input, opts.Follow)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenInput, err)
	}
	defer closeIn()

	out, closeOut, err := openOutput(opts.Output)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenOutput, err)
	}
	defer closeOut()

	writer.InitColorState(opts.Color, out)

	q := query.New(params)
	q.NoNetwork = opts.NoNetwork
	q.DumpOnFlush = opts.DumpOnFlush

	p := parser.New(in)

	w := writer.New(out, opts.Mode, opts.Context)
	w.ExpandJSON = opts.ExpandJSON

	grep.Run(p, q, w, opts.BufferSize)
	w.Close()

	if opts.Copy {
		copyOutputBestEffort(opts.Output)
	}

	return nil
}

func openInput(path string, tail bool) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	if tail {
		r, err := follow.New(path)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// copyOutputBestEffort is only meaningful when output went to a file;
// clipboard failures are logged and never change Run's exit code.
func copyOutputBestEffort(path string) {
	if path == "" {
		mylog.Warn("copy: -y has no effect when writing to stdout")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		mylog.Warn("copy: could not read %s: %v", path, err)
		return
	}
	if err := writeClipboard(string(data)); err != nil {
		mylog.Warn("copy: clipboard write failed: %v", err)
	}
}
