package requestid

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWithAndValue(t *testing.T) {
	id := New()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	ctx := With(context.Background(), id)
	require.Equal(t, id, Value(ctx))
	require.Empty(t, Value(context.Background()))
	require.NotEqual(t, id, New())
}
