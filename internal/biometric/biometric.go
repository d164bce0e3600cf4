// Package biometric decides whether a submitted photo shows the same person as
// a stored reference photo. Feature extraction and comparison are provided by
// an Extractor and a Comparer so the recognition backend can be swapped.
package biometric

import "errors"

// ErrNoFaceFound is returned by an Extractor when an image contains no face.
var ErrNoFaceFound = errors.New("no face found in image")

// Encoding is a numeric face descriptor usable for similarity comparison.
type Encoding []float32

// Extractor computes the encoding of the first face found in a JPEG image.
type Extractor interface {
	ExtractEncoding(jpeg []byte) (Encoding, error)
}

// Comparer reports whether two encodings belong to the same person.
// Lower tolerance is stricter.
type Comparer interface {
	Compare(known, candidate Encoding, tolerance float64) bool
}

// Reason names why a verification did not match.
type Reason string

const (
	ReasonReferenceNotFound Reason = "REFERENCE_NOT_FOUND"
	ReasonInvalidEncoding   Reason = "INVALID_ENCODING"
	ReasonNoFaceInReference Reason = "NO_FACE_IN_REFERENCE"
	ReasonNoFaceInSubmitted Reason = "NO_FACE_IN_SUBMITTED"
	ReasonDoesNotMatch      Reason = "DOES_NOT_MATCH"
)

// Result is the outcome of a verification. Reason is empty when Matched.
type Result struct {
	Matched bool
	Reason  Reason
}

// Matched is the successful Result.
var Matched = Result{Matched: true}

// NotMatched returns a failed Result carrying reason.
func NotMatched(reason Reason) Result {
	return Result{Reason: reason}
}

// EuclideanComparer matches encodings whose Euclidean distance is at most the
// tolerance.
type EuclideanComparer struct{}

// Compare implements Comparer.
func (EuclideanComparer) Compare(known, candidate Encoding, tolerance float64) bool {
	if len(known) == 0 || len(known) != len(candidate) {
		return false
	}
	var sum float64
	for i := range known {
		d := float64(known[i] - candidate[i])
		sum += d * d
	}
	return sum <= tolerance*tolerance
}
