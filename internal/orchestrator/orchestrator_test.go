package orchestrator

import (
	"context"
	"testing"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstallation struct {
	contents map[string]string
}

func (f fakeInstallation) AccessToken(ctx context.Context) (secret.String, error) {
	return secret.New("token"), nil
}
func (f fakeInstallation) ReadFileContents(ctx context.Context, sha string) (string, error) {
	return f.contents[sha], nil
}
func (f fakeInstallation) ReadFolder(ctx context.Context, path, ref string) (domain.Folder, error) {
	return domain.Folder{}, nil
}
func (f fakeInstallation) UpdateStatusCheck(ctx context.Context, commit, name string, externalID uint64, status domain.CheckStatus) error {
	return nil
}
func (f fakeInstallation) RateLimit(ctx context.Context) (int, int, error) {
	return 0, 0, nil
}

func pushTrigger() domain.Trigger {
	return domain.Trigger{
		RepositoryOwner: "o",
		RepositoryName:  "r",
		InstallationID:  7,
		Event: domain.Event{
			Kind: domain.EventPush,
			Push: domain.PushEvent{Branch: domain.Branch{Name: "main", Commit: "abc"}},
		},
	}
}

func TestParseAllReturnsMatchingPipelines(t *testing.T) {
	installation := fakeInstallation{contents: map[string]string{
		"sha1": `{"name":"build","trigger":[{"event":"push"}],"steps":[{"name":"t","image":"alpine"}]}`,
	}}
	candidates := []domain.File{{SHA: "sha1", Path: ".cinnabar/pipelines/p.json"}}

	configs, err := parseAll(context.Background(), candidates, installation, pushTrigger())

	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "build", configs[0].Name)
}

func TestParseAllDropsNonMatchingPipelines(t *testing.T) {
	installation := fakeInstallation{contents: map[string]string{
		"sha1": `{"name":"build","trigger":[{"event":"push","branch":"release"}],"steps":[]}`,
	}}
	candidates := []domain.File{{SHA: "sha1", Path: ".cinnabar/pipelines/p.json"}}

	configs, err := parseAll(context.Background(), candidates, installation, pushTrigger())

	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestParseAllFailsEntireBatchOnAnySingleError(t *testing.T) {
	installation := fakeInstallation{contents: map[string]string{
		"good": `{"name":"build","trigger":[{"event":"push"}],"steps":[]}`,
		"bad":  `not json`,
	}}
	candidates := []domain.File{
		{SHA: "good", Path: ".cinnabar/pipelines/good.json"},
		{SHA: "bad", Path: ".cinnabar/pipelines/bad.json"},
	}

	_, err := parseAll(context.Background(), candidates, installation, pushTrigger())

	require.Error(t, err)
}
