package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithoutURLIsNop(t *testing.T) {
	c := New("")
	assert.IsType(t, Nop{}, c)

	c.SetInt("k", 1, 60)
	_, ok := c.GetInt("k")
	assert.False(t, ok)
}

func TestMemcachedUnavailableIsAMiss(t *testing.T) {
	c := New("127.0.0.1:1")
	assert.IsType(t, &Memcached{}, c)

	c.SetInt("profile:1:followers", 3, 60)
	_, ok := c.GetInt("profile:1:followers")
	assert.False(t, ok)
	c.Delete("profile:1:followers")
}
