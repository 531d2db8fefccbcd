// Package sums computes SHA-256 checksums and writes checksum-tag sidecars.
package sums

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// Reader returns the hex-encoded SHA-256 of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", zerr.Wrap(err, "failed to hash stream")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the hex-encoded SHA-256 of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	return Reader(f)
}

// WriteTag writes the sidecar checksum-tag file for the artifact at path.
// The sidecar lives next to the artifact as "<path>.sha256sum" and contains a
// single line in the conventional "<hex-checksum> *<artifact-file-name>"
// format, so standard tools can verify it in binary mode.
func WriteTag(path string) error {
	sum, err := File(path)
	if err != nil {
		return err
	}

	tag := sum + " *" + filepath.Base(path) + "\n"
	if err := os.WriteFile(path+".sha256sum", []byte(tag), 0o644); err != nil { //nolint:gosec // sidecar is world-readable
		return zerr.With(zerr.Wrap(err, "failed to write checksum tag"), "path", path)
	}
	return nil
}
