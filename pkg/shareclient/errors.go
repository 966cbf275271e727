package shareclient

import (
	"errors"
	"fmt"
)

// ErrLinkExpired marks the terminal failure class: the share link no longer
// works (expired, revoked or never valid) and retrying the same URL is
// pointless. Every other failure is transient and worth a retry.
var ErrLinkExpired = errors.New("share link expired or invalid")

// ErrUnauthorized means the staff credential was rejected; callers should
// refresh their session rather than surface an error to the user.
var ErrUnauthorized = errors.New("staff credential rejected")

// TransientError wraps retryable transport and server failures.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient share error: %v", e.Err)
	}
	return fmt.Sprintf("transient share error: status %d", e.Status)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}
