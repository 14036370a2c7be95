package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	st := New()
	ctx := context.Background()

	_, found, err := st.Load(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, st.Save(ctx, "doc", "payload"))

	payload, found, err := st.Load(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "payload", payload)

	require.NoError(t, st.Delete(ctx, "doc"))

	_, found, err = st.Load(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, found)
}
