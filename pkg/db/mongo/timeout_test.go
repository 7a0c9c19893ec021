package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "hotelbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestWithTimeout_SessionContextUnchanged(t *testing.T) {
	sessCtx := mongo.NewSessionContext(context.Background(), nil)

	ctx, cancel := WithTimeout(sessCtx, time.Second)
	defer cancel()

	if ctx != sessCtx {
		t.Error("session context must be returned unchanged")
	}
	if _, ok := ctx.Deadline(); ok {
		t.Error("session context should not gain a deadline")
	}
}

func TestWithTimeout_KeepsEarlierDeadline(t *testing.T) {
	parent, parentCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer parentCancel()

	ctx, cancel := WithTimeout(parent, time.Hour)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if time.Until(deadline) > time.Second {
		t.Errorf("deadline %s should not extend past the parent", deadline)
	}
}

func TestWithTimeout_AddsDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline on a background context")
	}
}

func TestIsTransient(t *testing.T) {
	labeled := mongo.CommandError{
		Code:   112,
		Name:   "WriteConflict",
		Labels: []string{LabelTransientTransaction},
	}
	if !IsTransient(labeled) {
		t.Error("write conflict with transient label should be transient")
	}
	commit := mongo.CommandError{Code: 50, Name: "MaxTimeMSExpired", Labels: []string{LabelUnknownCommitResult}}
	if !IsTransient(commit) {
		t.Error("unknown commit result should be transient")
	}
	if IsTransient(mongo.CommandError{Code: 11000, Name: "DuplicateKey"}) {
		t.Error("unlabeled command errors are not transient")
	}
	if IsTransient(errors.New("boom")) {
		t.Error("plain errors are not transient")
	}
}

func TestTranslateTxError(t *testing.T) {
	conflict := apperrors.Conflict("Room is not available for the selected dates")
	writeConflict := mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{LabelTransientTransaction}}
	plain := errors.New("boom")

	if translateTxError(nil) != nil {
		t.Error("nil must stay nil")
	}
	if got := translateTxError(conflict); got != conflict {
		t.Errorf("AppError should pass through, got %v", got)
	}
	if got := translateTxError(writeConflict); !apperrors.HasCode(got, apperrors.CodeUnavailable) {
		t.Errorf("write conflict should become retryable, got %v", got)
	}
	if got := translateTxError(plain); !errors.Is(got, plain) || apperrors.IsAppError(got) {
		t.Errorf("plain error should be wrapped, got %v", got)
	}
}
