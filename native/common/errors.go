package common

import "errors"

// Failure classes shared by every engine. Module errors wrap exactly one of
// these so callers can classify a failure with errors.Is.
var (
	ErrAuthorization   = errors.New("authorization error")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConservation    = errors.New("conservation error")
	ErrPaymentMismatch = errors.New("payment mismatch")
	ErrStateConflict   = errors.New("state conflict")
)

var taxonomy = []error{
	ErrAuthorization,
	ErrValidation,
	ErrNotFound,
	ErrConservation,
	ErrPaymentMismatch,
	ErrStateConflict,
}

// Classify returns the taxonomy sentinel wrapped by err, or nil when err does
// not belong to the taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range taxonomy {
		if errors.Is(err, class) {
			return class
		}
	}
	return nil
}

// ClassName renders the class of err for logs and metrics labels.
func ClassName(err error) string {
	switch Classify(err) {
	case ErrAuthorization:
		return "authorization"
	case ErrValidation:
		return "validation"
	case ErrNotFound:
		return "not_found"
	case ErrConservation:
		return "conservation"
	case ErrPaymentMismatch:
		return "payment_mismatch"
	case ErrStateConflict:
		return "state_conflict"
	default:
		return "internal"
	}
}
