package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyBeforeAndAfterRun(t *testing.T) {
	fake := seededFake()
	m := New(fake, fake, account, nil)

	before, err := m.Verify(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, before.OK())
	assert.False(t, before.DatabaseDefaultsOK)
	assert.False(t, before.TableDefaultsOK)
	assert.Len(t, before.Locations, 3)
	assert.Len(t, before.Offending, 3)
	assert.Equal(t, 2, before.Foreign)

	_, err = runPhases(t, m)
	require.NoError(t, err)

	after, err := m.Verify(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, after.OK())
	assert.Empty(t, after.Locations)
	assert.Empty(t, after.Offending)
	assert.Equal(t, 2, after.Foreign)
}

func TestVerifyIsReadOnly(t *testing.T) {
	fake := seededFake()
	m := New(fake, fake, account, nil)

	_, err := m.Verify(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, fake.MutatingCalls())
}

func TestVerifyPropagatesListErrors(t *testing.T) {
	fake := seededFake()
	fake.Errors["ListPermissions"] = errors.New("throttled")
	m := New(fake, fake, account, nil)

	_, err := m.Verify(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "throttled")
}
