package service

import (
	"errors"
	"fmt"

	"circulation-service/internal/store"
)

// Workflow error taxonomy. Handlers map these onto HTTP statuses.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrValidation       = errors.New("invalid input")
)

// translateStoreErr lifts store errors into the workflow taxonomy
func translateStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, store.ErrStatusConflict):
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	default:
		return err
	}
}
