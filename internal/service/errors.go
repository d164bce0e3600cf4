package service

import "fmt"

// Kind classifies a service error so transports can map it to a status.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Error is an expected, caller-visible failure. Code is a stable
// machine-readable reason such as "TOO_FAR". Any error that is not an *Error
// is an internal failure.
type Error struct {
	Kind Kind
	Code string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Code)
}

// Is matches errors with the same Kind and Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Code == e.Code
}

func newError(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Admission and lookup failures.
var (
	ErrClassNotFound    = newError(KindNotFound, "CLASS_NOT_FOUND")
	ErrNoClassOnDate    = newError(KindNotFound, "NO_CLASS_ON_DATE")
	ErrOutsideTimeRange = newError(KindRejected, "OUTSIDE_TIME_RANGE")
	ErrTooFar           = newError(KindRejected, "TOO_FAR")
)

// Class creation failures.
var (
	ErrClassExists      = newError(KindConflict, "CLASS_EXISTS")
	ErrInvalidDateRange = newError(KindValidation, "INVALID_DATE_RANGE")
	ErrNoMeetingDays    = newError(KindValidation, "NO_MEETING_DAYS")
	ErrUnknownWeekday   = newError(KindValidation, "UNKNOWN_WEEKDAY")
	ErrInvalidDate      = newError(KindValidation, "INVALID_DATE")
	ErrInvalidTime      = newError(KindValidation, "INVALID_TIME")
	ErrInvalidLocation  = newError(KindValidation, "INVALID_LOCATION")
	ErrInvalidPhoto     = newError(KindValidation, "INVALID_PHOTO")
	ErrNotClassOwner    = newError(KindForbidden, "NOT_CLASS_OWNER")
)

// Credential and enrollment failures.
var (
	ErrInvalidCredentials  = newError(KindUnauthorized, "INVALID_CREDENTIALS")
	ErrInvalidRefreshToken = newError(KindUnauthorized, "INVALID_REFRESH_TOKEN")
	ErrInvalidJoinCode     = newError(KindUnauthorized, "INVALID_JOIN_CODE")
	ErrJoinCodeExpired     = newError(KindUnauthorized, "JOIN_CODE_EXPIRED")
	ErrRoleMismatch        = newError(KindForbidden, "ROLE_MISMATCH")
	ErrAlreadyEnrolled     = newError(KindConflict, "ALREADY_ENROLLED")
)
