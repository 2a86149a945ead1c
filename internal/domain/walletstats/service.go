package walletstats

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/walletstats/internal/domain"
)

// ErrNilWalletID is returned when stats are requested without a wallet.
var ErrNilWalletID = errors.New("wallet ID cannot be empty")

// Result is a full recalculation for one wallet.
type Result struct {
	// Stats holds one entry per domain.AllStatsPeriods, in that order.
	Stats     []domain.WalletStats
	IsScammer bool
	IsBot     bool
}

// Service recalculates wallet statistics.
type Service interface {
	// Recalculate aggregates tokens for every period, measured back from now.
	Recalculate(walletID uuid.UUID, tokens []domain.TokenStat, now time.Time) (*Result, error)
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a Service with NewDefaultParams.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a Service with custom thresholds.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{params: params}
}

func (s *defaultService) Recalculate(
	walletID uuid.UUID,
	tokens []domain.TokenStat,
	now time.Time,
) (*Result, error) {
	if walletID == uuid.Nil {
		return nil, ErrNilWalletID
	}

	now = now.UTC()
	res := &Result{Stats: make([]domain.WalletStats, 0, len(domain.AllStatsPeriods))}
	for _, period := range domain.AllStatsPeriods {
		stats := calculate(FilterPeriod(tokens, period, now), s.params)
		stats.WalletID = walletID
		stats.Period = period
		stats.UpdatedAt = now
		res.Stats = append(res.Stats, stats)
		if period == domain.StatsPeriodAll {
			res.IsScammer = isScammer(stats, s.params)
			res.IsBot = isBot(stats, s.params)
		}
	}
	return res, nil
}
