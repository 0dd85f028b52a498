package controller

import (
	"context"
	"errors"

	"github.com/billed/billed-app/internal/core/domain"
)

// IsNotFound reports whether err is a not-found class store failure, shown
// to the user as "Erreur 404". Every other store failure is an "Erreur 500".
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrBillNotFound) || errors.Is(err, domain.ErrReceiptNotFound)
}

func ctxErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
