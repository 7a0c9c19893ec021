package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "hotelbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const defaultMaxCommitTime = 5 * time.Second

// Error labels the server attaches to retryable transaction failures.
const (
	LabelTransientTransaction = "TransientTransactionError"
	LabelUnknownCommitResult  = "UnknownTransactionCommitResult"
)

// TransactionFunc is the body of a transaction. The driver re-runs it from
// the start on a TransientTransactionError, so it must not keep side effects
// outside the session.
type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type txRunner struct {
	client *mongo.Client
	opts   *options.TransactionOptions
}

// NewTransactionManager runs transactions on the primary with snapshot reads
// and majority writes, so a committed booking survives failover.
func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &txRunner{
		client: client,
		opts: options.Transaction().
			SetReadPreference(readpref.Primary()).
			SetReadConcern(readconcern.Snapshot()).
			SetWriteConcern(writeconcern.Majority()).
			SetMaxCommitTime(ptr(defaultMaxCommitTime)),
	}
}

func (t *txRunner) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := t.client.StartSession()
	if err != nil {
		return apperrors.Transient("Failed to start database session", err)
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, t.opts)
	return translateTxError(err)
}

// translateTxError keeps AppErrors raised by fn, except that a write
// conflict surfacing through one is reported as retryable.
func translateTxError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsTransient(err):
		return apperrors.Transient("Transaction aborted by a concurrent write, retry the request", err)
	case apperrors.IsAppError(err):
		return err
	default:
		return fmt.Errorf("transaction failed: %w", err)
	}
}

// IsTransient reports whether err carries a label indicating the operation
// can be retried as a whole.
func IsTransient(err error) bool {
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) &&
		(labeled.HasErrorLabel(LabelTransientTransaction) || labeled.HasErrorLabel(LabelUnknownCommitResult)) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

func ptr[T any](v T) *T { return &v }
