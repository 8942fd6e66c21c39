package mocks

import (
	"context"
	"sync"

	"aspen/infras/postgres"
)

type transactorImpl struct {
	mu sync.Mutex
}

// WithinTx implements postgres.Transactor by serializing callers and passing a nil tx.
func (t *transactorImpl) WithinTx(ctx context.Context, fn postgres.TxFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(ctx, nil)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
