package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetPreference(ctx, "goals")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetPreference(ctx, "goals", `{"savings":1000}`))
	value, err := s.GetPreference(ctx, "goals")
	require.NoError(t, err)
	assert.Equal(t, `{"savings":1000}`, value)

	// Overwrite.
	require.NoError(t, s.SetPreference(ctx, "goals", `{"savings":2000}`))
	value, err = s.GetPreference(ctx, "goals")
	require.NoError(t, err)
	assert.Equal(t, `{"savings":2000}`, value)

	require.NoError(t, s.DeletePreference(ctx, "goals"))
	_, err = s.GetPreference(ctx, "goals")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is a no-op.
	assert.NoError(t, s.DeletePreference(ctx, "goals"))
}

func TestSetPreference_EmptyKey(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.SetPreference(context.Background(), "", "x"), ErrValidation)
}
