package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAddress = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func TestValidateWalletAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"valid", validAddress, true},
		{"minimum length", strings.Repeat("1", 32), true},
		{"empty", "", false},
		{"too short", "ABC", false},
		{"too long", strings.Repeat("a", 45), false},
		{"zero is not base58", strings.Repeat("0", 40), false},
		{"capital O is not base58", "O" + validAddress[1:], false},
		{"whitespace", " " + validAddress[1:], false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := domain.ValidateWalletAddress(tc.address)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidWalletAddress)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, "address", vErr.Field)
		})
	}
}

func TestNewWallet(t *testing.T) {
	t.Parallel()

	w, err := domain.NewWallet(validAddress)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.Equal(t, validAddress, w.Address)
	assert.Nil(t, w.LastStatsCheck)
	assert.False(t, w.IsScammer)

	_, err = domain.NewWallet("bad")
	assert.ErrorIs(t, err, domain.ErrInvalidWalletAddress)
}

func TestWallet_Validate(t *testing.T) {
	t.Parallel()

	w := &domain.Wallet{Address: validAddress}
	assert.ErrorIs(t, w.Validate(), domain.ErrInvalidID)
}

func TestWallet_MarkStatsChecked(t *testing.T) {
	t.Parallel()

	w, err := domain.NewWallet(validAddress)
	require.NoError(t, err)

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	w.MarkStatsChecked(true, false, at)

	require.NotNil(t, w.LastStatsCheck)
	assert.True(t, w.LastStatsCheck.Equal(at))
	assert.Equal(t, time.UTC, w.LastStatsCheck.Location())
	assert.True(t, w.IsScammer)
	assert.False(t, w.IsBot)

	w.MarkStatsChecked(false, true, at)
	assert.False(t, w.IsScammer)
	assert.True(t, w.IsBot)
}

func TestParseStatsPeriod(t *testing.T) {
	t.Parallel()

	for _, p := range domain.AllStatsPeriods {
		got, err := domain.ParseStatsPeriod(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := domain.ParseStatsPeriod("90d")
	assert.ErrorIs(t, err, domain.ErrInvalidStatsPeriod)

	assert.Equal(t, 7, domain.StatsPeriod7d.Days())
	assert.Equal(t, 30, domain.StatsPeriod30d.Days())
	assert.Equal(t, 0, domain.StatsPeriodAll.Days())
}
