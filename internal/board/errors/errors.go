package errors

import (
	"fmt"
)

var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrDuplicateName = fmt.Errorf("duplicate name")
	ErrInvalidInput  = fmt.Errorf("invalid input")

	ErrNoProfile    = fmt.Errorf("no profile")
	ErrNoMembership = fmt.Errorf("no active company membership")
	ErrForbidden    = fmt.Errorf("insufficient role")

	ErrNoSubscription      = fmt.Errorf("no active subscription")
	ErrSubscriptionExpired = fmt.Errorf("subscription expired")
	ErrLimitReached        = fmt.Errorf("job post limit reached")

	ErrAlreadyApplied = fmt.Errorf("already applied")
)
