package queries

import (
	"context"
	"sync"
)

type oracleCall struct {
	Credential   string
	Identity     string
	Organization string
}

type fakeOracle struct {
	mu     sync.Mutex
	member bool
	err    error
	calls  []oracleCall
}

func (f *fakeOracle) CheckMembership(_ context.Context, credential string, identity string, organization string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, oracleCall{
		Credential:   credential,
		Identity:     identity,
		Organization: organization,
	})
	return f.member, f.err
}

func (f *fakeOracle) Calls() []oracleCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]oracleCall(nil), f.calls...)
}
