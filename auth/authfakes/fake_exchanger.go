package authfakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-proxy/aad"
)

// FakeExchanger is a test double for auth.TokenExchanger that records calls
// and replies with a canned result or error.
type FakeExchanger struct {
	mu sync.Mutex

	Result *aad.Result
	Err    error

	CodeCalls    int
	RefreshCalls int

	LastCode         string
	LastReplyURI     string
	LastRefreshToken string
}

// NewFakeExchanger creates a fake exchanger returning the given result.
func NewFakeExchanger(result *aad.Result) *FakeExchanger {
	return &FakeExchanger{Result: result}
}

func (f *FakeExchanger) ExchangeAuthorizationCode(_ context.Context, code, replyURI string) (*aad.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CodeCalls++
	f.LastCode = code
	f.LastReplyURI = replyURI
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Result, nil
}

func (f *FakeExchanger) ExchangeRefreshToken(_ context.Context, refreshToken string) (*aad.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RefreshCalls++
	f.LastRefreshToken = refreshToken
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Result, nil
}

// Calls returns the total number of exchange calls of either kind.
func (f *FakeExchanger) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.CodeCalls + f.RefreshCalls
}
