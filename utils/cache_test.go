package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetThenGet(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Get(ctx, "decimals:x")
	assert.Error(t, err)

	require.NoError(t, c.Set(ctx, "decimals:x", []byte{9}))
	got, err := c.Get(ctx, "decimals:x")
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, got)
}
