package parser

import (
	"context"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/sourcecontrol"
)

func parseJSON(ctx context.Context, file domain.File, installation sourcecontrol.Installation) (domain.PipelineConfiguration, error) {
	content, err := installation.ReadFileContents(ctx, file.SHA)
	if err != nil {
		return domain.PipelineConfiguration{}, genericError("could not read file contents", err)
	}

	config, err := unmarshalPipelineConfiguration([]byte(content))
	if err != nil {
		return domain.PipelineConfiguration{}, genericError("could not parse json", err)
	}

	return config, nil
}
