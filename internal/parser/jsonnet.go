package parser

import (
	"context"
	"fmt"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/sourcecontrol"
	"github.com/google/go-jsonnet"
)

// denyingImporter refuses every import/importstr/importbin call, enforcing
// that pipeline definitions have no filesystem or network access.
type denyingImporter struct{}

func (denyingImporter) Import(importedFrom, importedPath string) (contents jsonnet.Contents, foundAt string, err error) {
	return jsonnet.Contents{}, "", fmt.Errorf("imports are not permitted in pipeline definitions")
}

func parseJsonnet(ctx context.Context, file domain.File, installation sourcecontrol.Installation) (domain.PipelineConfiguration, error) {
	content, err := installation.ReadFileContents(ctx, file.SHA)
	if err != nil {
		return domain.PipelineConfiguration{}, genericError("could not read file contents", err)
	}

	vm := jsonnet.MakeVM()
	vm.Importer(denyingImporter{})
	// native_call has no general-purpose equivalent in go-jsonnet's VM
	// beyond NativeFunction registration; since none are registered, any
	// std.native(...) call already fails closed with an undefined-function
	// error, matching the hermetic policy without extra wiring.

	manifested, err := vm.EvaluateAnonymousSnippet(file.Path, content)
	if err != nil {
		return domain.PipelineConfiguration{}, genericError("could not interpret jsonnet", err)
	}

	config, err := unmarshalPipelineConfiguration([]byte(manifested))
	if err != nil {
		return domain.PipelineConfiguration{}, genericError("could not parse json", err)
	}

	return config, nil
}
