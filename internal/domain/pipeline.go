package domain

import "math/rand"

// StepConfiguration is one step as declared in a pipeline file.
type StepConfiguration struct {
	Name     string
	Image    string
	Commands []string
	Cache    []string
}

// PipelineConfiguration is the parsed contents of a pipeline file.
type PipelineConfiguration struct {
	Name    string
	Trigger []TriggerConfiguration
	Steps   []StepConfiguration
}

// Matches reports whether any of the configuration's trigger entries accept
// the given trigger.
func (c PipelineConfiguration) Matches(t Trigger) bool {
	for _, entry := range c.Trigger {
		if entry.Matches(t) {
			return true
		}
	}
	return false
}

// PipelineID is a freshly minted opaque identifier, unique across running
// pipelines in this process.
type PipelineID uint64

// NewPipelineID mints a fresh, random pipeline identifier.
func NewPipelineID() PipelineID {
	return PipelineID(rand.Uint64())
}

// PipelineStatus is the lifecycle variable of a running Pipeline.
type PipelineStatus int

const (
	StatusPending PipelineStatus = iota
	StatusRunning
	StatusPassed
	StatusFailed
)

// StepStatus is the lifecycle variable of one Step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
)

// Step is a runtime instance of a StepConfiguration, materialized with a
// 1-indexed id.
type Step struct {
	ID            int
	Configuration StepConfiguration
	Status        StepStatus
}

// Pipeline is a runtime instance of a PipelineConfiguration.
type Pipeline struct {
	ID            PipelineID
	Configuration PipelineConfiguration
	Steps         []Step
	Status        PipelineStatus
}

// NewPipeline materializes a Pipeline from its configuration, assigning a
// fresh random id and 1-indexed step ids.
func NewPipeline(configuration PipelineConfiguration) Pipeline {
	steps := make([]Step, len(configuration.Steps))
	for i, stepConfig := range configuration.Steps {
		steps[i] = Step{
			ID:            i + 1,
			Configuration: stepConfig,
			Status:        StepPending,
		}
	}

	return Pipeline{
		ID:            NewPipelineID(),
		Configuration: configuration,
		Steps:         steps,
		Status:        StatusPending,
	}
}

// File is a single blob entry in a provider directory listing.
type File struct {
	SHA  string
	Path string
}

// Folder is a provider listing of a directory at a commit.
type Folder struct {
	Items []File
}
