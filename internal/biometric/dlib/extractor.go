// Package dlib provides a biometric.Extractor backed by dlib's face
// recognition models through go-face. It requires the models
// shape_predictor_5_face_landmarks.dat, dlib_face_recognition_resnet_model_v1.dat
// and mmod_human_face_detector.dat in the configured directory.
package dlib

import (
	"fmt"
	"sync"

	face "github.com/Kagami/go-face"
	"github.com/uniattend/attendance-backend/internal/biometric"
)

// Extractor wraps a go-face recognizer. The recognizer is not safe for
// concurrent use, so calls are serialised.
type Extractor struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

// NewExtractor loads the dlib models from modelsDir.
func NewExtractor(modelsDir string) (*Extractor, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("load face models from %s: %w", modelsDir, err)
	}
	return &Extractor{rec: rec}, nil
}

// ExtractEncoding implements biometric.Extractor. Only the first detected
// face is used.
func (e *Extractor) ExtractEncoding(jpeg []byte) (biometric.Encoding, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	faces, err := e.rec.Recognize(jpeg)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	if len(faces) == 0 {
		return nil, biometric.ErrNoFaceFound
	}

	desc := faces[0].Descriptor
	enc := make(biometric.Encoding, len(desc))
	copy(enc, desc[:])
	return enc, nil
}

// Close releases the native recognizer.
func (e *Extractor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.Close()
}
