// Package grep orchestrates the parser, the query engine, the rolling
// buffer and the writer into the single-pass driver loop: for every
// parsed entry, decide whether it is a hit, run deep search to pull in
// transitively-related entries already sitting in the buffer, then let
// the buffer's rolling eviction feed the writer.
package grep

import (
	"github.com/bascanada/yategrep/pkg/entry"
	"github.com/bascanada/yategrep/pkg/logbuf"
	mylog "github.com/bascanada/yategrep/pkg/log"
	"github.com/bascanada/yategrep/pkg/query"
)

// Source is the subset of parser.Parser the driver depends on, so tests
// can supply a canned sequence of entries without going through a byte
// stream.
type Source interface {
	Get() (*entry.Entry, bool)
}

// Sink is the subset of writer.Writer the driver depends on.
type Sink interface {
	Eat(e *entry.Entry)
}

// Run drives P through Q, spilling hits (and the entries deep search
// pulls in transitively) into W, via a LogBuf of capacity bufSize.
func Run(p Source, q *query.Query, w Sink, bufSize int) {
	buf := logbuf.New(bufSize)
	var lastMarkedMessage *entry.Entry

	for {
		e, ok := p.Get()
		if !ok {
			break
		}

		if e.Type == entry.Startup {
			mylog.Debug("grep: startup banner, draining buffer and flushing query state")
			for {
				x := buf.Pop()
				if x == nil {
					break
				}
				w.Eat(x)
			}
			q.Flush()
			lastMarkedMessage = nil
		}

		if q.Matches(e, false) {
			e.Marked = true
			if e.Type == entry.Message {
				lastMarkedMessage = e
			}
			if q.Update(e, true) {
				mylog.Trace("grep: deep search triggered by new correlation terms")
				deepSearch(buf, q, e, &lastMarkedMessage)
			}
		}

		evicted := buf.PushPop(e)
		if evicted != nil {
			w.Eat(evicted)
			if evicted == lastMarkedMessage {
				lastMarkedMessage = nil
				q.Flush()
			}
		}
	}

	for {
		x := buf.Pop()
		if x == nil {
			break
		}
		w.Eat(x)
	}
	buf.Close()
}

// deepSearch is the worklist fixed point: each newly-accumulated
// channel/address term is re-applied to the whole buffer, which may mark
// more entries and in turn widen the term set further.
//
// The assignment to *lastMarkedMessage inside the inner loop intentionally
// tracks the outer seed entry e, not the entry t being marked. That is how
// it reads upstream; the effect is that flushing still happens when the
// newest *seed* Message leaves the window rather than the newest Message
// found via correlation.
func deepSearch(buf *logbuf.LogBuf, q *query.Query, e *entry.Entry, lastMarkedMessage **entry.Entry) {
	for {
		modified := false
		buf.Each(func(t *entry.Entry) bool {
			if t.Marked {
				return true
			}
			if !q.Matches(t, true) {
				return true
			}
			t.Marked = true
			if e.Type == entry.Message {
				*lastMarkedMessage = e
			}
			if q.Update(t, false) {
				modified = true
				return false // restart the scan
			}
			return true
		})
		if !modified {
			break
		}
	}
}
