package issuance

import "errors"

// TransientMetadataError means the token metadata has not yet propagated
// through the storage network. The only error class callers may retry.
type TransientMetadataError struct {
	Detail string
}

func (e *TransientMetadataError) Error() string {
	return "token metadata not yet propagated: " + e.Detail
}

// PermanentIssuanceError is any on-chain or validation failure that will not
// succeed on retry.
type PermanentIssuanceError struct {
	Detail string
}

func (e *PermanentIssuanceError) Error() string {
	return "token issuance failed: " + e.Detail
}

// IsTransientMetadata reports whether err allows a retry.
func IsTransientMetadata(err error) bool {
	var t *TransientMetadataError
	return errors.As(err, &t)
}
