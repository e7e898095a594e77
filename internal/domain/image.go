package domain

import (
	"strings"
)

// DockerImageReference is a decomposed container image name of the shape
// [hostname/]repository[:tag].
type DockerImageReference struct {
	Hostname   *string
	Repository string
	Tag        *string
}

// ParseDockerImageReference decomposes a raw image string. hostname is
// recognized only when the segment before the first '/' contains '.' or ':'
// or equals exactly "localhost"; otherwise the whole string is repository.
func ParseDockerImageReference(raw string) DockerImageReference {
	rest := raw
	var hostname *string

	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		candidate := rest[:idx]
		if looksLikeHostname(candidate) {
			h := candidate
			hostname = &h
			rest = rest[idx+1:]
		}
	}

	repository := rest
	var tag *string
	if idx := strings.LastIndexByte(rest, ':'); idx >= 0 {
		t := rest[idx+1:]
		tag = &t
		repository = rest[:idx]
	}

	return DockerImageReference{Hostname: hostname, Repository: repository, Tag: tag}
}

func looksLikeHostname(segment string) bool {
	if segment == "localhost" {
		return true
	}
	return strings.ContainsAny(segment, ".:")
}

// Display renders the reference bit-exact with parts omitted when absent.
func (r DockerImageReference) Display() string {
	var b strings.Builder
	if r.Hostname != nil {
		b.WriteString(*r.Hostname)
		b.WriteByte('/')
	}
	b.WriteString(r.Repository)
	if r.Tag != nil {
		b.WriteByte(':')
		b.WriteString(*r.Tag)
	}
	return b.String()
}

// TagOrLatest returns the tag to use at pull time, defaulting to "latest".
func (r DockerImageReference) TagOrLatest() string {
	if r.Tag != nil {
		return *r.Tag
	}
	return "latest"
}
