// Package parser turns a byte stream of telephony engine trace output into
// a lazy, non-restartable sequence of entry.Entry records. It is the
// biggest single component of the pipeline: a line reader plus an
// ordered table of classification patterns that assemble multi-line
// records (parameter dumps, verbatim blocks) into a single Entry.
package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/bascanada/yategrep/pkg/entry"
	mylog "github.com/bascanada/yategrep/pkg/log"
)

// bufSize mirrors the original engine's fixed 8 KiB line-reader window.
const bufSize = 8 * 1024

// Compile-once, process-wide pattern table. Treated as immutable after
// first use; Go's package-level var initialization already gives us the
// "lazy, compile-once" behavior the original engine got from static
// Regexp objects.
var (
	reParamFull = regexp.MustCompile(`^  param\['([^']*)'\] = '(.*)'$`)
	reParamOpen = regexp.MustCompile(`^  param\['([^']*)'\] = '(.*)$`)
	reTerminator = regexp.MustCompile(`^-----`)
	reMessage    = regexp.MustCompile(`^(?:Sniffed|Returned) `)
	reMessageTS  = regexp.MustCompile(`\bts=([0-9]+(?:\.[0-9]+)?)`)
	reMessageAddr = regexp.MustCompile(`\baddress=([^\s,']+)`)
	// Form A: "... '<tag>' sending|received ... to|from HOST:PORT ..."
	reNetworkA = regexp.MustCompile(`^(?:[0-9.]+ )?<[a-zA-Z0-9]+:[a-zA-Z0-9]+> '.*' (?:sending|received) .*(?:to|from) ([0-9.]+:[0-9]+)`)
	// Form B: channel-tag shape "proto:local:port-addr:port", followed by
	// a byte-count line, a send-code line, or a Q.931 trace line.
	reNetworkB = regexp.MustCompile(`^(?:[0-9.]+ )?<[a-zA-Z0-9]+:[a-zA-Z0-9]+> '[a-z]+:[0-9.]+:[0-9]+-([0-9.]+:[0-9]+)' (?:received [0-9]+ bytes|sending code [0-9]+|Q\.931 .*)`)
	reStartup = regexp.MustCompile(`^Yate \(([0-9]+)\) is starting `)
)

// Parser assembles entries from an io.Reader, one Get() call at a time.
// It is not safe for concurrent use and consumes its source exactly once.
type Parser struct {
	br         *bufio.Reader
	eofReached bool

	pending  *entry.Entry
	verbatim bool
}

// New wraps r in a Parser with the engine's 8 KiB read window.
func New(r io.Reader) *Parser {
	return &Parser{br: bufio.NewReaderSize(r, bufSize)}
}

// Get returns the next fully-assembled Entry, or ok=false at end of
// stream. The sequence is lazy: bytes are only read as Get is called.
func (p *Parser) Get() (*entry.Entry, bool) {
	for {
		line, ok := p.readLine()
		if !ok {
			if p.pending != nil {
				e := p.pending
				p.pending = nil
				return e, true
			}
			return nil, false
		}

		next := p.classify(line)
		if next == nil {
			continue
		}

		prev := p.pending
		p.pending = next
		if prev != nil {
			return prev, true
		}
		// No entry waiting to be flushed yet; keep assembling.
	}
}

// readLine returns the next line including its terminator, or ok=false
// once the underlying stream is exhausted. A short read or a final line
// with no trailing delimiter is returned once as a partial line; the
// following call reports end of stream.
func (p *Parser) readLine() (string, bool) {
	if p.eofReached {
		return "", false
	}
	line, err := p.br.ReadString('\n')
	if err != nil {
		p.eofReached = true
		if line == "" {
			return "", false
		}
		return line, true
	}
	return line, true
}

// readUntilQuote reads raw bytes up to and including the next single
// quote, used while assembling a multi-line parameter value. It returns
// whatever was read even if the stream ends before a quote is found.
func (p *Parser) readUntilQuote() string {
	if p.eofReached {
		return ""
	}
	s, err := p.br.ReadString('\'')
	if err != nil {
		p.eofReached = true
	}
	return s
}

// classify applies the ten ordered patterns in §4.1 to one raw line
// (including its trailing newline). It returns a newly-started Entry when
// the line opens one (patterns 5-8, 10), or nil when the line was folded
// into the pending Entry or otherwise produced no Entry of its own.
func (p *Parser) classify(line string) *entry.Entry {
	trimmed := strings.TrimRight(line, "\r\n")

	// 1. Verbatim-copy mode: raw-copy every line until the terminator.
	if p.verbatim {
		if p.pending != nil {
			p.pending.AppendText(line)
		}
		if reTerminator.MatchString(trimmed) {
			p.verbatim = false
		}
		return nil
	}

	if p.pending != nil && p.pending.Type == entry.Message {
		// 2. Parameter line with a closing quote on the same line.
		if m := reParamFull.FindStringSubmatch(trimmed); m != nil {
			p.pending.AppendText(line)
			p.pending.Set(m[1], m[2])
			return nil
		}
		// 3. Multi-line parameter value: no closing quote on this line.
		if m := reParamOpen.FindStringSubmatch(trimmed); m != nil {
			key, value := m[1], m[2]
			// The newline stripped off to run the regex was itself part
			// of the quoted value; put it back before the tail.
			newline := line[len(trimmed):]
			tail := p.readUntilQuote()
			// The rest of the line after the closing quote (normally just
			// its newline) belongs to this parameter line, not a new entry.
			rest := ""
			if strings.HasSuffix(tail, "'") {
				rest, _ = p.readLine()
			}
			p.pending.AppendText(line)
			p.pending.AppendText(tail)
			p.pending.AppendText(rest)
			p.pending.Set(key, value+newline+strings.TrimSuffix(tail, "'"))
			return nil
		}
	}

	// 4. Indented continuation line.
	if len(trimmed) > 0 && trimmed[0] == ' ' && p.pending != nil {
		p.pending.AppendText(line)
		return nil
	}

	// 5. Message header.
	if reMessage.MatchString(trimmed) {
		e := entry.New(entry.Message, line)
		if m := reMessageTS.FindStringSubmatch(trimmed); m != nil {
			e.Set("ts", m[1])
		}
		if m := reMessageAddr.FindStringSubmatch(trimmed); m != nil {
			e.Set("address", m[1])
		}
		return e
	}

	// 6. Network header, form A.
	if m := reNetworkA.FindStringSubmatch(trimmed); m != nil {
		e := entry.New(entry.Network, line)
		e.Set("address", m[1])
		return e
	}

	// 7. Network header, form B.
	if m := reNetworkB.FindStringSubmatch(trimmed); m != nil {
		e := entry.New(entry.Network, line)
		e.Set("address", m[1])
		return e
	}

	// 8. Startup banner.
	if m := reStartup.FindStringSubmatch(trimmed); m != nil {
		e := entry.New(entry.Startup, line)
		e.Set("pid", m[1])
		return e
	}

	// 9. Record terminator with a pending entry opens verbatim-copy mode.
	if reTerminator.MatchString(trimmed) && p.pending != nil {
		p.pending.AppendText(line)
		p.verbatim = true
		mylog.Trace("parser: entering verbatim-copy mode")
		return nil
	}

	// 10. Fallback.
	return entry.New(entry.Unknown, line)
}
