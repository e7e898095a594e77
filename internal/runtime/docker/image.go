package docker

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/shared/config"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
)

// PullImage pulls the image named by ref, supplying registry credentials
// only when ref's hostname matches an entry in the allowlist. The pull's
// progress stream is fully drained; only the last status line is observed.
func PullImage(ctx context.Context, cli *client.Client, ref domain.DockerImageReference, allowlist []config.RegistryCredential) error {
	fromImage := ref.Repository
	if ref.Hostname != nil {
		fromImage = *ref.Hostname + "/" + ref.Repository
	}
	fromImage = fromImage + ":" + ref.TagOrLatest()

	var opts image.PullOptions
	if auth, ok := registryAuth(ref, allowlist); ok {
		opts.RegistryAuth = auth
	}

	stream, err := cli.ImagePull(ctx, fromImage, opts)
	if err != nil {
		return wrap("failed to pull image "+fromImage, err)
	}
	defer stream.Close()

	lastStatus, err := drainLastStatus(stream)
	if err != nil {
		return wrap("failed to read pull progress for "+fromImage, err)
	}

	fmt.Println(lastStatus)

	return nil
}

func registryAuth(ref domain.DockerImageReference, allowlist []config.RegistryCredential) (string, bool) {
	if ref.Hostname == nil {
		return "", false
	}
	for _, cred := range allowlist {
		if cred.Hostname != *ref.Hostname {
			continue
		}
		payload, err := json.Marshal(registry.AuthConfig{
			Username:      cred.Username,
			Password:      cred.Password,
			ServerAddress: cred.Hostname,
		})
		if err != nil {
			return "", false
		}
		return base64.URLEncoding.EncodeToString(payload), true
	}
	return "", false
}

func drainLastStatus(stream io.Reader) (string, error) {
	var last struct {
		Status string `json:"status"`
	}

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		last = line
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	return last.Status, nil
}
