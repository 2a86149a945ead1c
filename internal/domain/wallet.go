package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wallet address bounds. Solana addresses are base58 encoded 32 byte keys.
const (
	MinWalletAddressLength = 32
	MaxWalletAddressLength = 44
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidateWalletAddress checks that address looks like a base58 wallet key.
func ValidateWalletAddress(address string) error {
	if address == "" {
		return NewValidationError("address", "cannot be empty", ErrInvalidWalletAddress)
	}
	if len(address) < MinWalletAddressLength || len(address) > MaxWalletAddressLength {
		return NewValidationError("address", "must be 32 to 44 characters", ErrInvalidWalletAddress)
	}
	for _, r := range address {
		if !strings.ContainsRune(base58Alphabet, r) {
			return NewValidationError("address", "contains non-base58 characters", ErrInvalidWalletAddress)
		}
	}
	return nil
}

// Wallet is a tracked on-chain account.
type Wallet struct {
	ID             uuid.UUID  `json:"id"`
	Address        string     `json:"address"`
	IsScammer      bool       `json:"is_scammer"`
	IsBot          bool       `json:"is_bot"`
	LastStatsCheck *time.Time `json:"last_stats_check,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewWallet creates a wallet for address with a fresh ID.
func NewWallet(address string) (*Wallet, error) {
	now := time.Now().UTC()
	w := &Wallet{
		ID:        uuid.New(),
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks the wallet's invariants.
func (w *Wallet) Validate() error {
	if w.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	return ValidateWalletAddress(w.Address)
}

// MarkStatsChecked records a completed recalculation.
func (w *Wallet) MarkStatsChecked(isScammer, isBot bool, at time.Time) {
	at = at.UTC()
	w.IsScammer = isScammer
	w.IsBot = isBot
	w.LastStatsCheck = &at
	w.UpdatedAt = at
}
