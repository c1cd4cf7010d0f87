// Package query implements the match predicate and transitive-correlation
// state used by the grep driver's deep search: a user-supplied key=value
// conjunction plus the channel/address terms it accumulates as it walks
// the log.
package query

import (
	"fmt"
	"os"
	"strings"

	"github.com/bascanada/yategrep/pkg/entry"
)

// channelNames is the closed set of parameter names that identify a
// telephony leg. Order does not matter; membership does.
var channelNames = map[string]bool{
	"id":         true,
	"targetid":   true,
	"peerid":     true,
	"lastpeerid": true,
	"newid":      true,
	"id.1":       true,
	"newid.1":    true,
	"peerid.1":   true,
}

// isAddressParam reports whether p looks like an address: named "address"
// and carrying at least one of '.', '/' or ':' in its value. This excludes
// degenerate placeholders such as "ring" or the empty string.
func isAddressParam(p entry.Param) bool {
	if p.Name != "address" {
		return false
	}
	return strings.ContainsAny(p.Value, "./:")
}

// Query holds the user's original key=value conjunction plus the channel
// and address terms learned during deep search.
type Query struct {
	Params []entry.Param

	channels []string
	addrs    []string

	newChannels int
	newAddrs    int

	// NoNetwork suppresses correlation via address, per -N.
	NoNetwork bool
	// DumpOnFlush writes a snapshot of accumulated terms to stderr before
	// every flush, per -D.
	DumpOnFlush bool
}

// New builds a Query from the CLI's parsed key=value params.
func New(params []entry.Param) *Query {
	return &Query{Params: params}
}

// Channels returns the accumulated channel identifiers, in discovery order.
func (q *Query) Channels() []string { return append([]string(nil), q.channels...) }

// Addrs returns the accumulated addresses, in discovery order.
func (q *Query) Addrs() []string { return append([]string(nil), q.addrs...) }

// Matches reports whether e should be reported as a hit. When partial is
// true, only terms learned since the last reset watermark are considered
// (the rest were already scanned in a previous round).
func (q *Query) Matches(e *entry.Entry, partial bool) bool {
	if !partial && e.Type == entry.Message && q.fullMatch(e) {
		return true
	}

	start := 0
	if partial {
		start = q.newChannels
	}
	for _, ch := range q.channels[start:] {
		if hasChannelValue(e, ch) {
			return true
		}
	}

	if e.Type != entry.Network || q.NoNetwork {
		return false
	}

	start = 0
	if partial {
		start = q.newAddrs
	}
	for _, addr := range q.addrs[start:] {
		if hasAddrValue(e, addr) {
			return true
		}
	}

	return false
}

func (q *Query) fullMatch(e *entry.Entry) bool {
	for _, want := range q.Params {
		v, ok := e.Get(want.Name)
		if !ok || v != want.Value {
			return false
		}
	}
	return true
}

func hasChannelValue(e *entry.Entry, value string) bool {
	for _, p := range e.Params {
		if channelNames[p.Name] && p.Value == value {
			return true
		}
	}
	return false
}

func hasAddrValue(e *entry.Entry, value string) bool {
	for _, p := range e.Params {
		if isAddressParam(p) && p.Value == value {
			return true
		}
	}
	return false
}

// Update accumulates new correlation terms from a hit. It is a no-op for
// any entry that is not a Message: gating here keeps Network entries from
// leaking addresses into correlation regardless of NoNetwork.
func (q *Query) Update(e *entry.Entry, reset bool) bool {
	if e.Type != entry.Message {
		return false
	}

	if reset {
		q.newChannels = len(q.channels)
		q.newAddrs = len(q.addrs)
	}

	modified := false
	for _, p := range e.Params {
		if channelNames[p.Name] && !contains(q.channels, p.Value) {
			q.channels = append(q.channels, p.Value)
			modified = true
		}
		if isAddressParam(p) && !contains(q.addrs, p.Value) {
			q.addrs = append(q.addrs, p.Value)
			modified = true
		}
	}
	return modified
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Flush clears accumulated correlation state. Params survive; a Startup
// banner or the eviction of the last marked Message both call this to
// stop correlating across a session or activity gap.
func (q *Query) Flush() {
	if q.DumpOnFlush {
		fmt.Fprintf(os.Stderr, "query: flushing %d channel(s), %d addr(s): channels=%v addrs=%v\n",
			len(q.channels), len(q.addrs), q.channels, q.addrs)
	}
	q.channels = nil
	q.addrs = nil
	q.newChannels = 0
	q.newAddrs = 0
}
