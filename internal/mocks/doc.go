// Package mocks provides shared mock implementations for tests.
//
// Each mock has one function field per interface method. When a field is
// nil the mock returns its default values instead, so most tests only set
// what they care about:
//
//	svc := &mocks.MockWalletStatsService{
//	    RequestRefreshFn: func(ctx context.Context, address string) (uuid.UUID, error) {
//	        return taskID, nil
//	    },
//	}
package mocks
