package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/sourcecontrol"
)

// Parse reads file's contents through installation and decodes it into a
// PipelineConfiguration, dispatching on the file's extension.
func Parse(ctx context.Context, file domain.File, installation sourcecontrol.Installation) (domain.PipelineConfiguration, error) {
	extension := strings.TrimPrefix(filepath.Ext(file.Path), ".")

	switch extension {
	case "jsonnet", "libsonnet":
		return parseJsonnet(ctx, file, installation)
	case "json":
		return parseJSON(ctx, file, installation)
	default:
		return domain.PipelineConfiguration{}, fileError(fmt.Sprintf("Unknown extension %q", extension))
	}
}
