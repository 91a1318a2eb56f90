package services

import "storefront/internal/apperror"

// unexpected keeps typed errors as they are and hides anything else behind a
// generic internal error.
func unexpected(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Internal("Unexpected error").WithError(err)
}
