package parser

import (
	"encoding/json"
	"fmt"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
)

type wirePipelineConfiguration struct {
	Name    string              `json:"name"`
	Trigger []wireTriggerConfig `json:"trigger"`
	Steps   []wireStepConfig    `json:"steps"`
}

type wireStepConfig struct {
	Name     string   `json:"name"`
	Image    string   `json:"image"`
	Commands []string `json:"commands"`
	Cache    []string `json:"cache"`
}

type wireTriggerConfig struct {
	Event  string  `json:"event"`
	Branch *string `json:"branch"`
	Source *string `json:"source"`
	Target *string `json:"target"`
}

func (c wireTriggerConfig) toDomain() (domain.TriggerConfiguration, error) {
	switch c.Event {
	case "push":
		return domain.TriggerConfiguration{Kind: domain.TriggerConfigPush, Branch: c.Branch}, nil
	case "pull_request":
		return domain.TriggerConfiguration{Kind: domain.TriggerConfigPullRequest, Source: c.Source, Target: c.Target}, nil
	default:
		return domain.TriggerConfiguration{}, fmt.Errorf("unknown trigger event %q", c.Event)
	}
}

func (w wirePipelineConfiguration) toDomain() (domain.PipelineConfiguration, error) {
	triggers := make([]domain.TriggerConfiguration, len(w.Trigger))
	for i, t := range w.Trigger {
		converted, err := t.toDomain()
		if err != nil {
			return domain.PipelineConfiguration{}, genericError("could not parse json", err)
		}
		triggers[i] = converted
	}

	steps := make([]domain.StepConfiguration, len(w.Steps))
	for i, s := range w.Steps {
		steps[i] = domain.StepConfiguration{
			Name:     s.Name,
			Image:    s.Image,
			Commands: s.Commands,
			Cache:    s.Cache,
		}
	}

	return domain.PipelineConfiguration{Name: w.Name, Trigger: triggers, Steps: steps}, nil
}

func unmarshalPipelineConfiguration(data []byte) (domain.PipelineConfiguration, error) {
	var wire wirePipelineConfiguration
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.PipelineConfiguration{}, err
	}
	return wire.toDomain()
}
