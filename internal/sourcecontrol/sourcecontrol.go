// Package sourcecontrol defines the provider-neutral contract the
// orchestrator uses to talk to the remote source-control API: installation
// token minting, directory/blob reads, and check-run reporting.
package sourcecontrol

import (
	"context"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
)

// SourceControl mints scoped Installations for a given (owner, repo,
// installation id) triple.
type SourceControl interface {
	GetInstallation(ctx context.Context, owner, repo string, installationID uint64) (Installation, error)
}

// Installation is a provider-scoped credential set (token + HTTP client)
// authorizing operations on one repository. A single Installation value is
// shared by all pipeline runs of one trigger.
type Installation interface {
	// AccessToken returns the installation's short-lived token. The token
	// is a secret: this is the one sanctioned accessor, used only to
	// inject it into a step container's environment.
	AccessToken(ctx context.Context) (secret.String, error)
	// ReadFileContents fetches a blob by content hash and returns its
	// decoded text contents.
	ReadFileContents(ctx context.Context, sha string) (string, error)
	// ReadFolder resolves path at ref, returning only blob entries.
	ReadFolder(ctx context.Context, path, ref string) (domain.Folder, error)
	// UpdateStatusCheck creates a new check run on commit. The endpoint is
	// not idempotent: every call creates a fresh check run.
	UpdateStatusCheck(ctx context.Context, commit, name string, externalID uint64, status domain.CheckStatus) error
	// RateLimit reports the provider's current core rate-limit usage, for
	// informational logging only; it never gates execution.
	RateLimit(ctx context.Context) (remaining, limit int, err error)
}
