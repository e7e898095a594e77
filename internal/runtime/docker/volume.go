package docker

import (
	"context"

	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
)

// Volume is a named Docker volume. Creation is idempotent on the name;
// removal of a volume still in use by an unrelated container returns an
// error, which the pipeline run logs without failing the pipeline.
type Volume struct {
	Name   string
	client *client.Client
}

// CreateVolume creates (or reuses) a named volume.
func CreateVolume(ctx context.Context, cli *client.Client, name string) (*Volume, error) {
	_, err := cli.VolumeCreate(ctx, volume.CreateOptions{Name: name})
	if err != nil {
		return nil, wrap("failed to create volume "+name, err)
	}
	return &Volume{Name: name, client: cli}, nil
}

// Remove deletes the volume. A failure here must never fail the pipeline:
// the volume may still be attached to an unrelated container.
func (v *Volume) Remove(ctx context.Context) error {
	if err := v.client.VolumeRemove(ctx, v.Name, false); err != nil {
		return wrap("failed to remove volume "+v.Name, err)
	}
	return nil
}
