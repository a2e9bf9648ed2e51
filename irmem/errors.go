package irmem

import "github.com/cockroachdb/errors"

// Sentinel errors callers match against with errors.Is; remote failures
// are wrapped around the sentinel so errors.Is still sees through to
// RemoteAllocFailed et al., with the remote error's message carried in the
// wrapped error's text.
var (
	// ErrInvalidPolicy is returned for a policy value outside the three
	// defined cases, and by the scalar and stream helpers when the map's
	// byte order is ByteOrderInvalid.
	ErrInvalidPolicy = errors.New("irmem: invalid allocation policy")

	ErrAddressSpaceFull  = errors.New("irmem: address space is full")
	ErrRemoteAllocFailed = errors.New("irmem: remote allocation failed")
	ErrRemoteRequired    = errors.New("irmem: process doesn't exist, and this memory must be in the process")
	ErrRemoteUnsupported = errors.New("irmem: process doesn't support allocating memory")
	ErrNotFound          = errors.New("irmem: allocation doesn't exist")
	ErrOutOfRange        = errors.New("irmem: no allocation contains the target range")
	ErrEmptyShadow       = errors.New("irmem: data buffer is empty")
	ErrShortShadow       = errors.New("irmem: not enough underlying data")
	ErrUnsupportedSize   = errors.New("irmem: unsupported scalar size")
	ErrZeroSize          = errors.New("irmem: size was zero")
	ErrHostUnavailable   = errors.New("irmem: memory is only in the target")
)

// wrapRemote wraps an error returned by the Process collaborator so that
// errors.Is(err, ErrRemoteAllocFailed) (or whichever sentinel applies)
// still succeeds. Only the remote error's message is kept, as a prefix of
// the returned error's text; the remote error value itself is not part of
// the chain, so errors.As cannot reach it.
func wrapRemote(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Wrapf(sentinel, "%s", cause.Error())
}
