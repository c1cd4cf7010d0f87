package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/yategrep/pkg/entry"
)

func collect(t *testing.T, input string) []*entry.Entry {
	t.Helper()
	p := New(strings.NewReader(input))
	var out []*entry.Entry
	for {
		e, ok := p.Get()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

func TestUnknownLinesRoundTrip(t *testing.T) {
	input := "hello world\nanother line\nno newline at end"
	entries := collect(t, input)

	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, entry.Unknown, e.Type)
	}

	var rebuilt strings.Builder
	for _, e := range entries {
		rebuilt.WriteString(e.Text)
	}
	assert.Equal(t, input, rebuilt.String())
}

func TestParamLineAttachesToPendingMessage(t *testing.T) {
	input := "Sniffed x\n  param['billid'] = '42'\n  param['other'] = 'z'\nSniffed y\n"
	entries := collect(t, input)

	require.Len(t, entries, 2)
	first := entries[0]
	assert.Equal(t, entry.Message, first.Type)
	v, ok := first.Get("billid")
	require.True(t, ok)
	assert.Equal(t, "42", v)
	v, ok = first.Get("other")
	require.True(t, ok)
	assert.Equal(t, "z", v)
}

func TestMultilineParameterValue(t *testing.T) {
	input := "Sniffed x\n  param['body'] = 'line one\nline two'\n"
	entries := collect(t, input)

	require.Len(t, entries, 1)
	v, ok := entries[0].Get("body")
	require.True(t, ok)
	assert.Equal(t, "line one\nline two", v)
}

func TestRoundTripWithParamsAndContinuations(t *testing.T) {
	input := "Sniffed x\n  param['billid'] = '42'\n  retval=true\nSniffed y\n"
	entries := collect(t, input)

	var rebuilt strings.Builder
	for _, e := range entries {
		rebuilt.WriteString(e.Text)
	}
	assert.Equal(t, input, rebuilt.String())
}

func TestStartupBanner(t *testing.T) {
	input := "Yate (123) is starting version 6\n"
	entries := collect(t, input)

	require.Len(t, entries, 1)
	assert.Equal(t, entry.Startup, entries[0].Type)
	pid, ok := entries[0].Get("pid")
	require.True(t, ok)
	assert.Equal(t, "123", pid)
}

func TestNetworkFormA(t *testing.T) {
	input := "<udp:5060> 'sip' sending 120 bytes to 10.0.0.1:5060\n"
	entries := collect(t, input)

	require.Len(t, entries, 1)
	assert.Equal(t, entry.Network, entries[0].Type)
	addr, ok := entries[0].Get("address")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1:5060", addr)
}

func TestNetworkFormB(t *testing.T) {
	input := "<udp:5060> 'udp:0.0.0.0:5060-10.0.0.2:5060' received 80 bytes\n"
	entries := collect(t, input)

	require.Len(t, entries, 1)
	assert.Equal(t, entry.Network, entries[0].Type)
	addr, ok := entries[0].Get("address")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.2:5060", addr)
}

func TestVerbatimBlockIsCopiedRaw(t *testing.T) {
	input := "Sniffed x\n-----\nraw line one\nraw line two\n-----\nSniffed y\n"
	entries := collect(t, input)

	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Text, "raw line one")
	assert.Contains(t, entries[0].Text, "raw line two")

	var rebuilt strings.Builder
	for _, e := range entries {
		rebuilt.WriteString(e.Text)
	}
	assert.Equal(t, input, rebuilt.String())
}

func TestEmptyInputYieldsNoEntries(t *testing.T) {
	entries := collect(t, "")
	assert.Empty(t, entries)
}
