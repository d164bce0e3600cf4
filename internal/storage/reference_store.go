// Package storage keeps one reference photo per student on local disk at
// <root>/Student/<euid>/reference_image.jpg.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/uniattend/attendance-backend/internal/biometric"
)

const referenceFileName = "reference_image.jpg"

// jpegSOI is the start-of-image marker every JPEG stream begins with.
var jpegSOI = []byte{0xFF, 0xD8, 0xFF}

// ReferenceStore reads and writes student reference images under a root directory.
type ReferenceStore struct {
	root string
}

// NewReferenceStore creates a ReferenceStore rooted at dir.
func NewReferenceStore(dir string) *ReferenceStore {
	return &ReferenceStore{root: dir}
}

// Path returns where the reference image for euid is stored.
func (s *ReferenceStore) Path(euid string) string {
	return filepath.Join(s.root, "Student", euid, referenceFileName)
}

// Save replaces the stored reference image for euid with jpeg, which must
// already be normalised (see biometric.NormalizeJPEG). Anything that is not
// a JPEG stream fails with biometric.ErrUnsupportedImage. The file is written
// to a temporary name first and renamed so readers never observe a partial
// image.
func (s *ReferenceStore) Save(euid string, jpeg []byte) error {
	if !bytes.HasPrefix(jpeg, jpegSOI) {
		return biometric.ErrUnsupportedImage
	}

	dst := s.Path(euid)
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create reference dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), referenceFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp reference: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(jpeg); err != nil {
		tmp.Close()
		return fmt.Errorf("write reference: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close reference: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("replace reference: %w", err)
	}
	return nil
}
