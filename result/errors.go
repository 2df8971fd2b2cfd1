package result

import (
	"context"
	"errors"
	"fmt"
	"net"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-recipe-catalog/datastore"
	"github.com/goliatone/go-recipe-catalog/guard"
)

// Kind is the failure taxonomy.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNotFound
	KindNetwork
	KindCancelled
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindCancelled:
		return "cancelled"
	case KindUnexpected:
		return "unexpected"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

const (
	// NetworkMessage is shown for every connectivity failure, whatever the cause.
	NetworkMessage = "Unable to reach the data store. Please check your connection and try again."
	// CancelledMessage is shown when the caller abandoned the operation.
	CancelledMessage = "The operation was cancelled."
)

// Invalid builds a validation failure from a guard error.
func Invalid[T any](err error) Result[T] {
	return failure[T](KindValidation, err.Error(), goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()))
}

// NotFound builds a not-found failure.
func NotFound[T any](message string) Result[T] {
	return failure[T](KindNotFound, message, goerrors.New(message, goerrors.CategoryNotFound))
}

// Failed builds an operation failure that is not backed by an error, such as a
// store that accepted the call but wrote nothing.
func Failed[T any](message string) Result[T] {
	return failure[T](KindUnexpected, message, goerrors.New(message, goerrors.CategoryInternal))
}

// FromError classifies err. action is a verb in progressive form and entity a
// noun, as in "An unexpected error occurred while creating the recipe".
func FromError[T any](err error, action, entity string) Result[T] {
	switch Classify(err) {
	case KindCancelled:
		return failure[T](KindCancelled, CancelledMessage, err)
	case KindValidation:
		return Invalid[T](err)
	case KindNetwork:
		return failure[T](KindNetwork, NetworkMessage, goerrors.Wrap(err, goerrors.CategoryExternal, NetworkMessage))
	}
	message := UnexpectedMessage(action, entity)
	return failure[T](KindUnexpected, message, goerrors.Wrap(err, goerrors.CategoryInternal, message))
}

// UnexpectedMessage is the generic message for unclassified failures.
func UnexpectedMessage(action, entity string) string {
	return fmt.Sprintf("An unexpected error occurred while %s the %s", action, entity)
}

// Classify maps an error onto the failure taxonomy. Not-found conditions are
// detected by callers from nil records, so Classify never reports KindNotFound.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}

	var v *guard.Violation
	if errors.As(err, &v) {
		return KindValidation
	}

	if IsNetwork(err) {
		return KindNetwork
	}
	return KindUnexpected
}

// IsNetwork reports connectivity failures.
func IsNetwork(err error) bool {
	if errors.Is(err, datastore.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
