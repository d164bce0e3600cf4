package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials  ErrCode = "INVALID_CREDENTIALS"
	ErrInvalidRefreshToken ErrCode = "INVALID_REFRESH_TOKEN"
	ErrTokenRequired       ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid        ErrCode = "TOKEN_INVALID"
	ErrTokenExpired        ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrRoleMismatch  ErrCode = "ROLE_MISMATCH"
	ErrNotClassOwner ErrCode = "NOT_CLASS_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrInvalidDateRange ErrCode = "INVALID_DATE_RANGE"
	ErrInvalidDate      ErrCode = "INVALID_DATE"
	ErrInvalidTime      ErrCode = "INVALID_TIME"
	ErrNoMeetingDays    ErrCode = "NO_MEETING_DAYS"
	ErrUnknownWeekday   ErrCode = "UNKNOWN_WEEKDAY"
	ErrInvalidLocation  ErrCode = "INVALID_LOCATION"
	ErrInvalidPhoto     ErrCode = "INVALID_PHOTO"
	ErrInvalidRole      ErrCode = "INVALID_ROLE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrClassNotFound     ErrCode = "CLASS_NOT_FOUND"
	ErrClassExists       ErrCode = "CLASS_EXISTS"
	ErrAlreadyEnrolled   ErrCode = "ALREADY_ENROLLED"
	ErrReferenceNotFound ErrCode = "REFERENCE_NOT_FOUND"

	// ─── Enrollment ────────────────────────────────────────────────────
	ErrInvalidJoinCode ErrCode = "INVALID_JOIN_CODE"
	ErrJoinCodeExpired ErrCode = "JOIN_CODE_EXPIRED"

	// ─── Attendance ────────────────────────────────────────────────────
	ErrNoClassOnDate     ErrCode = "NO_CLASS_ON_DATE"
	ErrOutsideTimeRange  ErrCode = "OUTSIDE_TIME_RANGE"
	ErrTooFar            ErrCode = "TOO_FAR"
	ErrInvalidEncoding   ErrCode = "INVALID_ENCODING"
	ErrNoFaceInReference ErrCode = "NO_FACE_IN_REFERENCE"
	ErrNoFaceInSubmitted ErrCode = "NO_FACE_IN_SUBMITTED"
	ErrDoesNotMatch      ErrCode = "DOES_NOT_MATCH"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid EUID or credentials."
	case ErrInvalidRefreshToken:
		return "Refresh token is invalid, expired or already used."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrRoleMismatch:
		return "This account has a different role."
	case ErrNotClassOwner:
		return "Only the professor who owns this class can do this."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed."
	case ErrInvalidPayload:
		return "Request body is malformed."
	case ErrInvalidDateRange:
		return "End date is before start date."
	case ErrInvalidDate:
		return "Dates must use the YYYY-MM-DD format."
	case ErrInvalidTime:
		return "Times must use the 24-hour HH:MM:SS format."
	case ErrNoMeetingDays:
		return "At least one meeting day is required."
	case ErrUnknownWeekday:
		return "Meeting days must be English weekday names."
	case ErrInvalidLocation:
		return "Location must be a valid [latitude, longitude] pair."
	case ErrInvalidPhoto:
		return "Photo must be a base64-encoded JPEG, PNG, GIF or WebP image."
	case ErrInvalidRole:
		return "Role must be student or professor."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrClassNotFound:
		return "Class not found."
	case ErrClassExists:
		return "A class with this code already exists."
	case ErrAlreadyEnrolled:
		return "Student is already enrolled in this class."
	case ErrReferenceNotFound:
		return "No reference photo is on file for this student."

	// ─── Enrollment ────────────────────────────────────────────────────
	case ErrInvalidJoinCode:
		return "Join code is incorrect."
	case ErrJoinCodeExpired:
		return "Join code has expired. Ask your professor for a new one."

	// ─── Attendance ────────────────────────────────────────────────────
	case ErrNoClassOnDate:
		return "This class does not meet today."
	case ErrOutsideTimeRange:
		return "Attendance is only accepted close to the class start time."
	case ErrTooFar:
		return "You are too far from the classroom."
	case ErrInvalidEncoding:
		return "Photo is not valid base64."
	case ErrNoFaceInReference:
		return "No face was found in the reference photo."
	case ErrNoFaceInSubmitted:
		return "No face was found in the submitted photo."
	case ErrDoesNotMatch:
		return "Face does not match the reference photo."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."

	default:
		return "An unknown error occurred."
	}
}
