package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	gogithub "github.com/google/go-github/v68/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestInstallation points an Installation's REST client at an httptest
// server instead of api.github.com, bypassing the App/installation-token
// transport entirely — these tests exercise request shaping and response
// decoding only.
func newTestInstallation(t *testing.T, mux *http.ServeMux) *Installation {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := gogithub.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return &Installation{client: client, owner: "owner", repo: "repo"}
}

func TestReadFileContentsJoinsChunkedBase64(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/git/blobs/sha1", func(w http.ResponseWriter, r *http.Request) {
		encoded := base64.StdEncoding.EncodeToString([]byte("pipeline contents"))
		chunked := encoded[:4] + "\n" + encoded[4:]
		fmt.Fprintf(w, `{"sha":"sha1","content":%q,"encoding":"base64"}`, chunked)
	})

	installation := newTestInstallation(t, mux)

	contents, err := installation.ReadFileContents(context.Background(), "sha1")

	require.NoError(t, err)
	assert.Equal(t, "pipeline contents", contents)
}

func TestReadFolderFiltersToBlobEntries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/contents/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"type":"dir","path":".cinnabar","sha":"shaDir"}]`)
	})
	mux.HandleFunc("/repos/owner/repo/git/trees/shaDir", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sha":"shaDir","tree":[
			{"path":"pipelines/a.json","sha":"shaA","type":"blob"},
			{"path":"pipelines","sha":"shaTree","type":"tree"}
		]}`)
	})

	installation := newTestInstallation(t, mux)

	folder, err := installation.ReadFolder(context.Background(), ".cinnabar", "main")

	require.NoError(t, err)
	require.Len(t, folder.Items, 1)
	assert.Equal(t, "shaA", folder.Items[0].SHA)
	assert.Equal(t, ".cinnabar/pipelines/a.json", folder.Items[0].Path)
}

func TestUpdateStatusCheckPostsCheckRun(t *testing.T) {
	var body struct {
		Status     *string `json:"status"`
		Conclusion *string `json:"conclusion"`
		ExternalID *string `json:"external_id"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/repo/check-runs", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":1}`)
	})

	installation := newTestInstallation(t, mux)

	err := installation.UpdateStatusCheck(context.Background(), "abc123", "build", 42, domain.CheckRunning)

	require.NoError(t, err)
	require.NotNil(t, body.Status)
	assert.Equal(t, "in_progress", *body.Status)
	assert.Nil(t, body.Conclusion)
	require.NotNil(t, body.ExternalID)
	assert.Equal(t, "42", *body.ExternalID)
}

func TestCheckRunStatusMapping(t *testing.T) {
	assert.Equal(t, "queued", checkRunStatus(domain.CheckPending))
	assert.Equal(t, "in_progress", checkRunStatus(domain.CheckRunning))
	assert.Equal(t, "completed", checkRunStatus(domain.CheckPassed))
	assert.Equal(t, "completed", checkRunStatus(domain.CheckFailed))
}

func TestCheckRunConclusionMapping(t *testing.T) {
	assert.Equal(t, "success", checkRunConclusion(domain.CheckPassed))
	assert.Equal(t, "failure", checkRunConclusion(domain.CheckFailed))
}
