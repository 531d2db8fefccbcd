package domain

import "go.trai.ch/zerr"

var (
	// ErrTargetExists is returned when the target directory already exists
	// and no explicit override was given.
	ErrTargetExists = zerr.New("target already exists, remove it first or pass --force")

	// ErrDiskSpace is returned when the target filesystem cannot hold the
	// resolved transaction.
	ErrDiskSpace = zerr.New("not enough free disk space on target")

	// ErrResolve is returned when the dependency solver cannot satisfy the
	// requested set. The full solver problem list is attached as metadata.
	ErrResolve = zerr.New("unable to resolve dependencies")

	// ErrBatchDownload is returned after the package batch download has
	// exhausted all retry attempts.
	ErrBatchDownload = zerr.New("failed to download packages")

	// ErrChecksumMismatch is returned when a downloaded artifact does not
	// match its recorded checksum.
	ErrChecksumMismatch = zerr.New("checksum verification failed")

	// ErrMirrorNotFound is returned when no loaded index lists a package
	// and thus no mirror can serve it.
	ErrMirrorNotFound = zerr.New("no mirror provides package")

	// ErrTopicNotFound is returned when a requested overlay name is absent
	// from the central topic manifest.
	ErrTopicNotFound = zerr.New("requested topic does not exist")

	// ErrBadReleaseFile is returned when an overlay's release metadata is
	// missing or malformed.
	ErrBadReleaseFile = zerr.New("invalid release metadata")

	// ErrNoGuestRuntime is returned when neither a container supervisor nor
	// a chroot capability is available on the host.
	ErrNoGuestRuntime = zerr.New("neither systemd-nspawn nor chroot is available")

	// ErrGuestStartup is returned when the guest supervisor exits before
	// the guest became reachable.
	ErrGuestStartup = zerr.New("guest exited before becoming ready")

	// ErrGuestTimeout is returned when the guest never became reachable
	// within the bounded probe attempts.
	ErrGuestTimeout = zerr.New("timeout waiting for guest")

	// ErrGuestExit is returned when the install script exits non-zero
	// inside the guest.
	ErrGuestExit = zerr.New("guest command exited with non-zero status")

	// ErrRecursionLimit is returned when package list includes nest deeper
	// than the allowed depth.
	ErrRecursionLimit = zerr.New("package list recursion limit exceeded, is there a loop?")

	// ErrBadRecordSize is returned when an archive record size is not a
	// positive multiple of the block size.
	ErrBadRecordSize = zerr.New("record size must be a positive multiple of 512")

	// ErrExport is returned when an external export tool exits non-zero.
	ErrExport = zerr.New("archive export failed")
)
