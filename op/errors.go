package op

import (
	"errors"
	"fmt"
)

// ValidationError reports an order rejected before any write stuck:
// a missing product or insufficient stock. The transaction that
// produced it was rolled back in full.
type ValidationError struct {
	ProductID int64
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.ProductID != 0 {
		return fmt.Sprintf("product %d: %s", e.ProductID, e.Reason)
	}
	return e.Reason
}

// IsValidation reports whether err is a clean-rollback validation
// failure, as opposed to an unexpected engine failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
