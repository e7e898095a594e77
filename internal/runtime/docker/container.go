package docker

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/shared/secret"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

const workspaceDirectory = "/ci/src"

// ExitCode is a container's exit status. Zero means the step passed.
type ExitCode int64

// IsOk reports whether the step passed.
func (c ExitCode) IsOk() bool {
	return c == 0
}

// Container is a single step's container. Create followed by Run followed
// by Remove is the full lifecycle; Remove always runs, regardless of exit
// code.
type Container struct {
	name   string
	client *client.Client
}

// CreateContainer builds (but does not start) the container for one step,
// bound to the pipeline's workspace volume at /ci/src.
func CreateContainer(ctx context.Context, cli *client.Client, pipelineID domain.PipelineID, step domain.Step, workspace *Volume, accessToken secret.String) (*Container, error) {
	name := fmt.Sprintf("pipeline-%d-step-%d", pipelineID, step.ID)

	env := []string{
		fmt.Sprintf("NETRC_CONTENT=machine github.com login x-oauth-token password %s", accessToken.Expose()),
		fmt.Sprintf("SCRIPT=%s", entrypointScript),
		fmt.Sprintf("COMMANDS=%s", strings.Join(step.Configuration.Commands, "; ")),
	}

	config := &container.Config{
		Image:      step.Configuration.Image,
		WorkingDir: workspaceDirectory,
		Tty:        true,
		Env:        env,
		Entrypoint: []string{"/bin/sh", "-c", `echo "$SCRIPT" "$COMMANDS" | /bin/sh`},
	}

	hostConfig := &container.HostConfig{
		Binds: []string{fmt.Sprintf("%s:%s", workspace.Name, workspaceDirectory)},
	}

	resp, err := cli.ContainerCreate(ctx, config, hostConfig, nil, nil, name)
	if err != nil {
		return nil, wrap("failed to create container "+name, err)
	}

	return &Container{name: resp.ID, client: cli}, nil
}

// Run starts the container, waits for it to exit, drains and prints its
// logs in timestamp order, and returns its exit code.
func (c *Container) Run(ctx context.Context) (ExitCode, error) {
	if err := c.client.ContainerStart(ctx, c.name, container.StartOptions{}); err != nil {
		return 0, wrap("failed to start container "+c.name, err)
	}

	statusCh, errCh := c.client.ContainerWait(ctx, c.name, container.WaitConditionNotRunning)

	var exitCode ExitCode
	select {
	case err := <-errCh:
		if err == nil {
			return 0, wrap("failed to get container exit_code", nil)
		}
		exitCode = ExitCode(extractStatusCode(err))
	case status := <-statusCh:
		exitCode = ExitCode(status.StatusCode)
	}

	if err := c.printLogs(ctx); err != nil {
		return exitCode, err
	}

	return exitCode, nil
}

// extractStatusCode recovers an embedded status code carried on a wait
// error, falling back to a generic non-zero code.
func extractStatusCode(err error) int64 {
	type statusCoder interface {
		StatusCode() int64
	}
	if sc, ok := err.(statusCoder); ok {
		return sc.StatusCode()
	}
	return 1
}

// printLogs fetches stdout+stderr with timestamps, sorts entries by their
// lexicographic ISO-8601 timestamp prefix, and prints messages in order —
// the sort absorbs any interleaving between the two streams.
func (c *Container) printLogs(ctx context.Context) error {
	reader, err := c.client.ContainerLogs(ctx, c.name, container.LogsOptions{
		Timestamps: true,
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return wrap("failed to read logs for "+c.name, err)
	}
	defer reader.Close()

	type logLine struct {
		timestamp string
		message   string
	}
	var lines []logLine

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		timestamp, message, found := strings.Cut(raw, " ")
		if !found {
			timestamp, message = raw, ""
		}
		lines = append(lines, logLine{timestamp: timestamp, message: message})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].timestamp < lines[j].timestamp
	})

	for _, line := range lines {
		fmt.Println(line.message)
	}

	return nil
}

// Remove deletes the container. Always called, even on a failed step.
func (c *Container) Remove(ctx context.Context) error {
	if err := c.client.ContainerRemove(ctx, c.name, container.RemoveOptions{}); err != nil {
		return wrap("failed to remove container "+c.name, err)
	}
	return nil
}
