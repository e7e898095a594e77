package github

import (
	"fmt"

	"github.com/JakobStaudinger/cinnabar/internal/cinnaerr"
)

// wrap tags any failure reaching the GitHub client as ProviderUnavailable,
// the single taxonomy the orchestrator needs to see regardless of whether
// the underlying cause was an HTTP failure, a JWT signing error, or a
// decoding failure.
func wrap(message string, cause error) error {
	return cinnaerr.Wrap(cinnaerr.ProviderUnavailable, message, cause)
}

func generic(format string, args ...any) error {
	return cinnaerr.New(cinnaerr.ProviderUnavailable, fmt.Sprintf(format, args...))
}
