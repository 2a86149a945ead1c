package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"ErrWalletNotFound", ErrWalletNotFound, true},
		{"wrapped ErrTaskNotFound", fmt.Errorf("get task: %w", ErrTaskNotFound), true},
		{"duplicate", ErrWalletExists, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsNotFoundError(tc.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrWalletExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrWalletNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	err := NewStoreError("wallet", "update", "no rows", ErrWalletNotFound)
	assert.Equal(t, "update operation on wallet failed: no rows: entity not found: wallet", err.Error())
	assert.ErrorIs(t, err, ErrWalletNotFound)

	bare := NewStoreError("task", "get", "timeout", nil)
	assert.Equal(t, "get operation on task failed: timeout", bare.Error())
}
