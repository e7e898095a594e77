package webhook

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JakobStaudinger/cinnabar/internal/cinnaerr"
	"github.com/JakobStaudinger/cinnabar/internal/domain"
)

var supportedEvents = map[string]bool{
	"push":         true,
	"pull_request": true,
}

// ParseTrigger reads the x-github-event header and, for a supported event
// name, decodes the verified body into a domain.Trigger. A nil trigger with
// a nil error means the event was well-formed but not actionable (unknown
// event name, or a push/pull_request payload that doesn't produce a
// trigger).
func ParseTrigger(headers http.Header, body VerifiedBody) (*domain.Trigger, error) {
	eventValues := headers.Values("x-github-event")
	if len(eventValues) == 0 || eventValues[0] == "" {
		return nil, cinnaerr.New(cinnaerr.Envelope, "Missing header x-github-event")
	}
	event := eventValues[0]
	if !isASCII(event) {
		return nil, cinnaerr.New(cinnaerr.Envelope, "Failed to parse event")
	}

	if !supportedEvents[event] {
		return nil, nil
	}

	envelope := struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}{Event: event, Payload: body.Bytes()}

	envelopeBytes, err := json.Marshal(envelope)
	if err != nil {
		return nil, cinnaerr.Wrap(cinnaerr.Envelope, "Failed to parse payload", err)
	}

	var wrapper rawWebhookEvent
	if err := json.Unmarshal(envelopeBytes, &wrapper); err != nil {
		return nil, cinnaerr.Wrap(cinnaerr.Envelope, "Failed to parse payload", err)
	}

	switch wrapper.Event {
	case "push":
		var data pushEventData
		if err := json.Unmarshal(wrapper.Payload, &data); err != nil {
			return nil, cinnaerr.Wrap(cinnaerr.Envelope, "Failed to parse payload", err)
		}
		return data.extractTrigger(), nil
	case "pull_request":
		var data pullRequestEvent
		if err := json.Unmarshal(wrapper.Payload, &data); err != nil {
			return nil, cinnaerr.Wrap(cinnaerr.Envelope, "Failed to parse payload", err)
		}
		return data.extractTrigger(), nil
	default:
		return nil, nil
	}
}

type rawWebhookEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type repository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type installation struct {
	ID uint64 `json:"id"`
}

type pushEventData struct {
	Ref        string     `json:"ref"`
	HeadCommit *headCommit `json:"head_commit"`
	Repository repository `json:"repository"`
	Installation installation `json:"installation"`
}

type headCommit struct {
	ID string `json:"id"`
}

func (d pushEventData) extractTrigger() *domain.Trigger {
	branchName, ok := strings.CutPrefix(d.Ref, "refs/heads/")
	if !ok || d.HeadCommit == nil {
		return nil
	}

	return &domain.Trigger{
		RepositoryOwner: d.Repository.Owner.Login,
		RepositoryName:  d.Repository.Name,
		InstallationID:  d.Installation.ID,
		Event: domain.Event{
			Kind: domain.EventPush,
			Push: domain.PushEvent{
				Branch: domain.Branch{Name: branchName, Commit: d.HeadCommit.ID},
			},
		},
	}
}

type pullRequestRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// refName applies the tolerant prefix-stripping rule: refs/heads/ and
// refs/tags/ prefixes are stripped; an unrecognized prefix is tolerated and
// the whole string is used as the name.
func refName(ref string) string {
	if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
		return name
	}
	if name, ok := strings.CutPrefix(ref, "refs/tags/"); ok {
		return name
	}
	return ref
}

type pullRequestData struct {
	Head pullRequestRef `json:"head"`
	Base pullRequestRef `json:"base"`
}

type pullRequestEvent struct {
	Action       string          `json:"action"`
	Installation installation    `json:"installation"`
	Repository   repository      `json:"repository"`
	PullRequest  pullRequestData `json:"pull_request"`
}

var acceptedPullRequestActions = map[string]bool{
	"opened":      true,
	"reopened":    true,
	"synchronize": true,
}

func (e pullRequestEvent) extractTrigger() *domain.Trigger {
	if !acceptedPullRequestActions[e.Action] {
		return nil
	}

	return &domain.Trigger{
		RepositoryOwner: e.Repository.Owner.Login,
		RepositoryName:  e.Repository.Name,
		InstallationID:  e.Installation.ID,
		Event: domain.Event{
			Kind: domain.EventPullRequest,
			PullRequest: domain.PullRequestEvent{
				Source: domain.Branch{Name: refName(e.PullRequest.Head.Ref), Commit: e.PullRequest.Head.SHA},
				Target: domain.Branch{Name: refName(e.PullRequest.Base.Ref), Commit: e.PullRequest.Base.SHA},
			},
		},
	}
}
