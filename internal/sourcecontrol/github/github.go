// Package github implements the sourcecontrol contract against the real
// GitHub App API: JWT signing and installation-token minting via
// ghinstallation, REST calls via go-github.
package github

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
	"github.com/JakobStaudinger/cinnabar/internal/sourcecontrol"
	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
)

// Client mints scoped Installations for a GitHub App identity.
type Client struct {
	appID      int64
	privateKey []byte
}

// New builds a Client from the App's numeric id and RSA private key (PEM).
func New(appID int64, privateKey []byte) *Client {
	return &Client{appID: appID, privateKey: privateKey}
}

var _ sourcecontrol.SourceControl = (*Client)(nil)

// GetInstallation mints a short-lived installation access token scoped to
// owner/repo and wraps it in an Installation.
func (c *Client) GetInstallation(ctx context.Context, owner, repo string, installationID uint64) (sourcecontrol.Installation, error) {
	transport, err := ghinstallation.New(http.DefaultTransport, c.appID, int64(installationID), c.privateKey)
	if err != nil {
		return nil, wrap("failed to build installation transport", err)
	}

	client := gogithub.NewClient(&http.Client{Transport: transport})

	return &Installation{client: client, transport: transport, owner: owner, repo: repo}, nil
}

// Installation is a GitHub-App-scoped client for one repository.
type Installation struct {
	client    *gogithub.Client
	transport *ghinstallation.Transport
	owner     string
	repo      string
}

var _ sourcecontrol.Installation = (*Installation)(nil)

// AccessToken returns the installation's current token, minting or
// refreshing it as needed.
func (i *Installation) AccessToken(ctx context.Context) (secret.String, error) {
	token, err := i.transport.Token(ctx)
	if err != nil {
		return secret.String{}, wrap("failed to mint installation token", err)
	}
	return secret.New(token), nil
}

// ReadFileContents fetches a blob by content hash, undoing the
// newline-chunked base64 encoding the API returns.
func (i *Installation) ReadFileContents(ctx context.Context, sha string) (string, error) {
	blob, _, err := i.client.Git.GetBlob(ctx, i.owner, i.repo, sha)
	if err != nil {
		return "", wrap("failed to read blob "+sha, err)
	}

	joined := strings.ReplaceAll(blob.GetContent(), "\n", "")
	decoded, err := decodeBase64(joined)
	if err != nil {
		return "", generic("could not decode contents of %s", sha)
	}

	return string(decoded), nil
}

// ReadFolder resolves path at ref by locating the directory entry's tree
// SHA in its parent's listing (the repository root's listing for a
// top-level directory) and then reading the full recursive tree, keeping
// only blob entries.
func (i *Installation) ReadFolder(ctx context.Context, dirPath, ref string) (domain.Folder, error) {
	treeRef := ref
	parent := path.Dir(dirPath)
	if parent == "." {
		parent = ""
	}
	if parent != "/" {
		_, contents, _, err := i.client.Repositories.GetContents(ctx, i.owner, i.repo, parent, &gogithub.RepositoryContentGetOptions{Ref: ref})
		if err != nil {
			return domain.Folder{}, wrap("failed to list "+parent, err)
		}

		found := false
		for _, item := range contents {
			if item.GetPath() == dirPath {
				treeRef = item.GetSHA()
				found = true
				break
			}
		}
		if !found {
			return domain.Folder{}, generic("could not find file in tree")
		}
	}

	tree, _, err := i.client.Git.GetTree(ctx, i.owner, i.repo, treeRef, true)
	if err != nil {
		return domain.Folder{}, wrap("failed to read tree "+treeRef, err)
	}

	var items []domain.File
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		items = append(items, domain.File{
			SHA:  entry.GetSHA(),
			Path: path.Join(dirPath, entry.GetPath()),
		})
	}

	return domain.Folder{Items: items}, nil
}

// RateLimit reports the provider's current core rate-limit usage.
func (i *Installation) RateLimit(ctx context.Context) (remaining, limit int, err error) {
	rate, _, rateErr := i.client.RateLimit.Get(ctx)
	if rateErr != nil {
		return 0, 0, wrap("failed to read rate limit", rateErr)
	}
	return rate.Core.Remaining, rate.Core.Limit, nil
}

// UpdateStatusCheck creates a new check run on commit. The endpoint is not
// idempotent; every call creates a fresh check run.
func (i *Installation) UpdateStatusCheck(ctx context.Context, commit, name string, externalID uint64, status domain.CheckStatus) error {
	opts := gogithub.CreateCheckRunOptions{
		Name:       name,
		HeadSHA:    commit,
		ExternalID: gogithub.Ptr(strconv.FormatUint(externalID, 10)),
		Status:     gogithub.Ptr(checkRunStatus(status)),
	}

	if status.IsCompleted() {
		opts.Conclusion = gogithub.Ptr(checkRunConclusion(status))
	}

	_, _, err := i.client.Checks.CreateCheckRun(ctx, i.owner, i.repo, opts)
	if err != nil {
		return wrap("failed to create check run", err)
	}
	return nil
}

func checkRunStatus(status domain.CheckStatus) string {
	switch status {
	case domain.CheckPending:
		return "queued"
	case domain.CheckRunning:
		return "in_progress"
	default:
		return "completed"
	}
}

func checkRunConclusion(status domain.CheckStatus) string {
	switch status {
	case domain.CheckFailed:
		return "failure"
	case domain.CheckPassed:
		return "success"
	default:
		return "neutral"
	}
}
