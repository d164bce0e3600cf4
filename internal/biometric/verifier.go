package biometric

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
)

// Verifier runs the ordered face verification checks. Each check
// short-circuits, so later (more expensive) stages never run once one fails.
type Verifier struct {
	extractor Extractor
	comparer  Comparer
	log       zerolog.Logger
}

// NewVerifier creates a Verifier over the given recognition backend.
func NewVerifier(extractor Extractor, comparer Comparer, log zerolog.Logger) *Verifier {
	return &Verifier{
		extractor: extractor,
		comparer:  comparer,
		log:       log.With().Str("component", "biometric").Logger(),
	}
}

// VerifyMatch compares a base64 submitted photo with the reference image at
// referencePath. A non-nil error is returned only for unexpected failures
// such as an unreadable reference file; every expected outcome is a Result.
func (v *Verifier) VerifyMatch(submittedB64, referencePath string, tolerance float64) (Result, error) {
	if _, err := os.Stat(referencePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NotMatched(ReasonReferenceNotFound), nil
		}
		return Result{}, fmt.Errorf("stat reference image: %w", err)
	}

	submitted, err := base64.StdEncoding.DecodeString(submittedB64)
	if err != nil {
		return NotMatched(ReasonInvalidEncoding), nil
	}

	reference, err := os.ReadFile(referencePath)
	if err != nil {
		return Result{}, fmt.Errorf("read reference image: %w", err)
	}
	known, ok, err := v.encode(reference)
	if err != nil {
		return Result{}, fmt.Errorf("reference image: %w", err)
	}
	if !ok {
		return NotMatched(ReasonNoFaceInReference), nil
	}

	candidate, ok, err := v.encode(submitted)
	if err != nil {
		return Result{}, fmt.Errorf("submitted image: %w", err)
	}
	if !ok {
		return NotMatched(ReasonNoFaceInSubmitted), nil
	}

	if !v.comparer.Compare(known, candidate, tolerance) {
		return NotMatched(ReasonDoesNotMatch), nil
	}
	return Matched, nil
}

// encode normalises raw to JPEG and extracts the first face. ok is false when
// the image cannot be decoded or holds no face.
func (v *Verifier) encode(raw []byte) (Encoding, bool, error) {
	jpeg, err := NormalizeJPEG(raw)
	if err != nil {
		v.log.Debug().Err(err).Msg("Image could not be decoded")
		return nil, false, nil
	}

	enc, err := v.extractor.ExtractEncoding(jpeg)
	if errors.Is(err, ErrNoFaceFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return enc, true, nil
}
