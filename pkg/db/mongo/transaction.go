package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "fleetbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxFunc runs inside a session transaction. The context it receives is the
// session context and must be passed to every repository call made within.
type TxFunc func(ctx context.Context) error

type TxManager interface {
	Execute(ctx context.Context, fn TxFunc) error
}

type txManager struct {
	client      *mongo.Client
	maxAttempts int
}

func NewTxManager(client *mongo.Client, maxAttempts int) TxManager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &txManager{
		client:      client,
		maxAttempts: maxAttempts,
	}
}

// Execute runs fn in a multi-document transaction with snapshot isolation.
// Transient transaction aborts (lock contention, stale snapshot) are retried
// up to maxAttempts with linear backoff; application errors are not.
func (m *txManager) Execute(ctx context.Context, fn TxFunc) error {
	var lastErr error

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		lastErr = m.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if apperrors.IsAppError(lastErr) || !isTransient(lastErr) {
			return lastErr
		}

		backoff := time.Duration(attempt) * 100 * time.Millisecond
		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction aborted: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("transaction failed after %d attempts: %w", m.maxAttempts, lastErr)
}

func (m *txManager) runOnce(ctx context.Context, fn TxFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func isTransient(err error) bool {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorLabel("TransientTransactionError")
	}
	return false
}
