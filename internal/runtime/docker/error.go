// Package docker is the Container Runtime Adapter: volume and container
// lifecycle, and image pulls, against the Docker Engine API.
package docker

import "github.com/JakobStaudinger/cinnabar/internal/cinnaerr"

func wrap(message string, cause error) error {
	return cinnaerr.Wrap(cinnaerr.RuntimeError, message, cause)
}
