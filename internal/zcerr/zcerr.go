// Package zcerr defines the engine's error taxonomy. Every terminal error the public
// API can return is one of these sentinels (or wraps one via fmt.Errorf("%w", ...)),
// so callers can dispatch with errors.Is.
package zcerr

import "errors"

// Sentinel errors, one per kind in the engine's error taxonomy.
var (
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrNoEncryptedEntry       = errors.New("archive has no encrypted local-file entry")
	ErrUnsupportedEncryption  = errors.New("entry uses an unsupported encryption scheme")
	ErrUnsupportedCompression = errors.New("entry uses an unsupported compression method")
	ErrTruncatedArchive       = errors.New("archive is truncated or malformed")
	ErrNotFound               = errors.New("password not found in the configured search space")
	ErrCancelled              = errors.New("cracking was cancelled")
)

// Kind identifies which taxonomy bucket an error belongs to, for callers that want to
// branch on kind rather than compare sentinels directly (e.g. the CLI's exit code, or
// a Snapshot's short human-readable token).
type Kind int

const (
	KindNone Kind = iota
	KindInvalidConfig
	KindNoEncryptedEntry
	KindUnsupportedEncryption
	KindUnsupportedCompression
	KindTruncatedArchive
	KindNotFound
	KindCancelled
	KindUnknown
)

// String returns a short human-readable token identifying the error kind, suitable
// for logs or an exit-code mapping.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindInvalidConfig:
		return "invalid-config"
	case KindNoEncryptedEntry:
		return "no-encrypted-entry"
	case KindUnsupportedEncryption:
		return "unsupported-encryption"
	case KindUnsupportedCompression:
		return "unsupported-compression"
	case KindTruncatedArchive:
		return "truncated-archive"
	case KindNotFound:
		return "not-found"
	case KindCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// KindOf classifies err against the known sentinels. Returns KindUnknown for a
// non-nil error that isn't one of ours, KindNone for nil.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, ErrNoEncryptedEntry):
		return KindNoEncryptedEntry
	case errors.Is(err, ErrUnsupportedEncryption):
		return KindUnsupportedEncryption
	case errors.Is(err, ErrUnsupportedCompression):
		return KindUnsupportedCompression
	case errors.Is(err, ErrTruncatedArchive):
		return KindTruncatedArchive
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	default:
		return KindUnknown
	}
}
