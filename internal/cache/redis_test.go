package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/redis.v5"
)

type counts struct {
	Farmers int `json:"total_farmers"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	c := FromClient(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, s
}

func TestJSONRoundTrip(t *testing.T) {
	c, s := newTestCache(t)

	var got counts
	ok, err := c.GetJSON("home", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetJSON("home", counts{Farmers: 4}, time.Minute))
	ok, err = c.GetJSON("home", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, got.Farmers)

	s.FastForward(2 * time.Minute)
	ok, err = c.GetJSON("home", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelAndBadPayload(t *testing.T) {
	c, s := newTestCache(t)
	require.NoError(t, s.Set("home", "not-json"))

	var got counts
	_, err := c.GetJSON("home", &got)
	assert.Error(t, err)

	require.NoError(t, c.Del("home"))
	assert.False(t, s.Exists("home"))
}

func TestNewPing(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	c, err := New(Options{Addr: s.Addr()})
	require.NoError(t, err)
	assert.NoError(t, c.Ping())
	_ = c.Close()

	s.Close()
	_, err = New(Options{Addr: s.Addr()})
	assert.Error(t, err)
}
