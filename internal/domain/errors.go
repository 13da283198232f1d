package domain

import "errors"

var (
	ErrConferenceNotFound = errors.New("conference not found")

	ErrConferenceExists = errors.New("conference already exists")

	ErrUserNotFound = errors.New("user not found")

	ErrUserExists = errors.New("user already exists with the same id")

	ErrBookingNotFound = errors.New("booking not found")

	ErrConferenceStarted = errors.New("conference has already started")

	ErrExistingBooking = errors.New("user has an existing booking for the conference")

	ErrOverlappingConference = errors.New("user has an existing overlapping booking")

	// ErrOperationFailed covers persistence-layer and other transient
	// failures that carry no domain meaning for the caller.
	ErrOperationFailed = errors.New("operation failed")
)

// WrongRequestError signals a state mismatch on cancel/confirm, e.g.
// cancelling an already cancelled booking or confirming without an open
// offer.
type WrongRequestError struct {
	Reason string
}

func (e *WrongRequestError) Error() string {
	return e.Reason
}

func WrongRequest(reason string) error {
	return &WrongRequestError{Reason: reason}
}

// IsWrongRequest reports whether err is a WrongRequestError.
func IsWrongRequest(err error) bool {
	var wre *WrongRequestError
	return errors.As(err, &wre)
}
