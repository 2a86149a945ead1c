// Package service contains the application use cases behind the wallet API.
// It orchestrates domain objects, the stores defined in internal/store and
// the event emitter that hands work to the background task runner.
//
// Key components:
//
// 1. WalletStatsService:
//   - RequestRefresh makes sure the wallet is tracked, allocates a task ID and
//     emits a task request event. It returns as soon as the task is queued.
//   - GetRefreshStatus projects the stored task onto the public
//     pending/success/failure vocabulary.
//   - GetWalletStats returns the wallet and its latest per-period statistics.
//   - ListWallets and ListWalletTokens page through tracked wallets and a
//     wallet's token aggregates.
//
// 2. Error Handling:
//   - Expected conditions are returned as sentinel errors (ErrWalletNotFound,
//     ErrTaskNotFound, ErrRefreshUnavailable) or as domain validation errors.
//   - Everything else is wrapped in a WalletStatsServiceError carrying the
//     failed operation.
//
// The service layer depends on repository interfaces, never on a concrete
// database implementation.
package service
