package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/yategrep/pkg/entry"
)

func msg(params ...entry.Param) *entry.Entry {
	e := entry.New(entry.Message, "")
	for _, p := range params {
		e.Set(p.Name, p.Value)
	}
	return e
}

func net(params ...entry.Param) *entry.Entry {
	e := entry.New(entry.Network, "")
	for _, p := range params {
		e.Set(p.Name, p.Value)
	}
	return e
}

func TestFullMatchIgnoresExtraParams(t *testing.T) {
	q := New([]entry.Param{{Name: "billid", Value: "42"}})
	e := msg(entry.Param{Name: "billid", Value: "42"}, entry.Param{Name: "other", Value: "z"})
	assert.True(t, q.Matches(e, false))
}

func TestFullMatchRequiresEveryQueryKey(t *testing.T) {
	q := New([]entry.Param{
		{Name: "billid", Value: "42"},
		{Name: "other", Value: "z"},
	})
	e := msg(entry.Param{Name: "billid", Value: "42"})
	assert.False(t, q.Matches(e, false))
}

func TestFullMatchOnlyAppliesToMessage(t *testing.T) {
	q := New([]entry.Param{{Name: "address", Value: "10.0.0.1:5060"}})
	e := net(entry.Param{Name: "address", Value: "10.0.0.1:5060"})
	// Full match path is gated to Message entries; this must fall through
	// to the address-correlation path, which has no accumulated terms yet.
	assert.False(t, q.Matches(e, false))
}

func TestChannelCorrelation(t *testing.T) {
	q := New([]entry.Param{{Name: "billid", Value: "42"}})
	seed := msg(entry.Param{Name: "billid", Value: "42"}, entry.Param{Name: "id", Value: "chan/1"})
	require.True(t, q.Matches(seed, false))
	require.True(t, q.Update(seed, true))

	peer := msg(entry.Param{Name: "peerid", Value: "chan/1"}, entry.Param{Name: "billid", Value: "0"})
	assert.True(t, q.Matches(peer, false))
}

func TestAddressCorrelation(t *testing.T) {
	q := New([]entry.Param{{Name: "address", Value: "10.0.0.1:5060"}})
	seed := msg(entry.Param{Name: "address", Value: "10.0.0.1:5060"})
	require.True(t, q.Matches(seed, false))
	require.True(t, q.Update(seed, true))

	hit := net(entry.Param{Name: "address", Value: "10.0.0.1:5060"})
	assert.True(t, q.Matches(hit, false))

	miss := net(entry.Param{Name: "address", Value: "192.0.2.1:5060"})
	assert.False(t, q.Matches(miss, false))
}

func TestNoNetworkSuppressesAddressMatches(t *testing.T) {
	q := New([]entry.Param{{Name: "address", Value: "10.0.0.1:5060"}})
	q.NoNetwork = true
	seed := msg(entry.Param{Name: "address", Value: "10.0.0.1:5060"})
	q.Update(seed, true)

	hit := net(entry.Param{Name: "address", Value: "10.0.0.1:5060"})
	assert.False(t, q.Matches(hit, false))
}

func TestAddressParamPredicateExcludesPlaceholders(t *testing.T) {
	q := New([]entry.Param{{Name: "billid", Value: "42"}})
	seed := msg(entry.Param{Name: "billid", Value: "42"}, entry.Param{Name: "address", Value: "ring"})
	q.Update(seed, true)
	assert.Empty(t, q.Addrs())
}

func TestUpdateIsNoopForNonMessage(t *testing.T) {
	q := New(nil)
	e := net(entry.Param{Name: "address", Value: "10.0.0.1:5060"})
	assert.False(t, q.Update(e, true))
	assert.Empty(t, q.Addrs())
}

func TestUpdateIsIdempotent(t *testing.T) {
	q1 := New(nil)
	e := msg(entry.Param{Name: "id", Value: "c1"}, entry.Param{Name: "address", Value: "10.0.0.1:5060"})
	q1.Update(e, true)

	q2 := New(nil)
	q2.Update(e, true)
	q2.Update(e, false)

	assert.Equal(t, q1.Channels(), q2.Channels())
	assert.Equal(t, q1.Addrs(), q2.Addrs())
}

func TestPartialMatchHonoursWatermark(t *testing.T) {
	q := New(nil)
	first := msg(entry.Param{Name: "id", Value: "c1"})
	q.Update(first, true)

	// The watermark is 0, so a partial match scans every term; c1 is the
	// only one so far and does not match a later-introduced channel.
	other := msg(entry.Param{Name: "peerid", Value: "c2"})
	assert.False(t, q.Matches(other, true))

	second := msg(entry.Param{Name: "id", Value: "c2"})
	q.Update(second, false)
	assert.True(t, q.Matches(other, true))

	// A reset moves the watermark past c1 and c2, so a partial match no
	// longer considers them.
	third := msg(entry.Param{Name: "id", Value: "c3"})
	q.Update(third, true)
	assert.False(t, q.Matches(other, true))
}

func TestFlushPreservesParamsClearsTerms(t *testing.T) {
	q := New([]entry.Param{{Name: "billid", Value: "42"}})
	e := msg(entry.Param{Name: "billid", Value: "42"}, entry.Param{Name: "id", Value: "c1"})
	q.Update(e, true)
	require.NotEmpty(t, q.Channels())

	q.Flush()
	assert.Empty(t, q.Channels())
	assert.Empty(t, q.Addrs())
	assert.Equal(t, []entry.Param{{Name: "billid", Value: "42"}}, q.Params)
}
