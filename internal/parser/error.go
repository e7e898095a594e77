// Package parser discovers and decodes pipeline configuration files: a
// direct JSON reader for .json, and a hermetic Jsonnet evaluator for
// .jsonnet/.libsonnet.
package parser

import "github.com/JakobStaudinger/cinnabar/internal/cinnaerr"

// fileError reports an unsupported file (e.g. an unknown extension).
func fileError(message string) error {
	return cinnaerr.New(cinnaerr.ParseError, message)
}

// genericError wraps any evaluator, decode, or I/O error encountered while
// parsing a recognized file.
func genericError(message string, cause error) error {
	return cinnaerr.Wrap(cinnaerr.ParseError, message, cause)
}
