package webhook

import (
	"net/http"
	"testing"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headersWithEvent(event string) http.Header {
	h := http.Header{}
	h.Set("x-github-event", event)
	return h
}

func TestParseTriggerReturnsNilForUnknownEvent(t *testing.T) {
	trigger, err := ParseTrigger(headersWithEvent("pull"), VerifiedBody{body: []byte("")})

	require.NoError(t, err)
	assert.Nil(t, trigger)
}

func TestParseTriggerReturnsErrorForMissingEventHeader(t *testing.T) {
	_, err := ParseTrigger(http.Header{}, VerifiedBody{body: []byte("")})

	assert.EqualError(t, err, "envelope: Missing header x-github-event")
}

func TestParseTriggerParsesPushEvent(t *testing.T) {
	body := []byte(`{
		"ref": "refs/heads/branch",
		"head_commit": { "id": "123" },
		"repository": { "name": "Repo", "owner": { "login": "Owner" } },
		"installation": { "id": 789 }
	}`)

	trigger, err := ParseTrigger(headersWithEvent("push"), VerifiedBody{body: body})

	require.NoError(t, err)
	require.NotNil(t, trigger)
	assert.Equal(t, domain.Trigger{
		RepositoryOwner: "Owner",
		RepositoryName:  "Repo",
		InstallationID:  789,
		Event: domain.Event{
			Kind: domain.EventPush,
			Push: domain.PushEvent{Branch: domain.Branch{Name: "branch", Commit: "123"}},
		},
	}, *trigger)
}

func TestParseTriggerParsesPullRequestOpenedEvent(t *testing.T) {
	body := []byte(`{
		"action": "opened",
		"pull_request": {
			"head": { "sha": "123", "ref": "refs/heads/head-branch" },
			"base": { "sha": "456", "ref": "refs/heads/base-branch" }
		},
		"repository": { "name": "Repo", "owner": { "login": "Owner" } },
		"installation": { "id": 789 }
	}`)

	trigger, err := ParseTrigger(headersWithEvent("pull_request"), VerifiedBody{body: body})

	require.NoError(t, err)
	require.NotNil(t, trigger)
	assert.Equal(t, domain.Trigger{
		RepositoryOwner: "Owner",
		RepositoryName:  "Repo",
		InstallationID:  789,
		Event: domain.Event{
			Kind: domain.EventPullRequest,
			PullRequest: domain.PullRequestEvent{
				Source: domain.Branch{Name: "head-branch", Commit: "123"},
				Target: domain.Branch{Name: "base-branch", Commit: "456"},
			},
		},
	}, *trigger)
}

func TestParseTriggerReturnsNilForUnknownPullRequestAction(t *testing.T) {
	body := []byte(`{
		"action": "labeled",
		"pull_request": {
			"head": { "sha": "123", "ref": "refs/heads/head-branch" },
			"base": { "sha": "456", "ref": "refs/heads/base-branch" }
		},
		"repository": { "name": "Repo", "owner": { "login": "Owner" } },
		"installation": { "id": 789 }
	}`)

	trigger, err := ParseTrigger(headersWithEvent("pull_request"), VerifiedBody{body: body})

	require.NoError(t, err)
	assert.Nil(t, trigger)
}

func TestRefNameTreatsUnknownPrefixAsHead(t *testing.T) {
	assert.Equal(t, "weird/ref", refName("weird/ref"))
	assert.Equal(t, "main", refName("refs/heads/main"))
	assert.Equal(t, "v1", refName("refs/tags/v1"))
}
