package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeCache(t *testing.T) {
	c := NewFreeCache(1)

	_, found := c.Get("sitemap")
	assert.False(t, found)

	require.NoError(t, c.Set("sitemap", []byte("<urlset/>"), time.Minute))
	val, found := c.Get("sitemap")
	require.True(t, found)
	assert.Equal(t, "<urlset/>", string(val))
	assert.Equal(t, int64(1), c.EntryCount())

	c.Del("sitemap")
	_, found = c.Get("sitemap")
	assert.False(t, found)
}

func TestFreeCache_Expiry(t *testing.T) {
	c := NewFreeCache(0)

	// sub-second ttl is rounded up to one second
	require.NoError(t, c.Set("short", []byte("v"), 10*time.Millisecond))
	_, found := c.Get("short")
	assert.True(t, found)

	require.Eventually(t, func() bool {
		_, found := c.Get("short")
		return !found
	}, 3*time.Second, 100*time.Millisecond)
}
