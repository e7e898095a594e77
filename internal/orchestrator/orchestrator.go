// Package orchestrator is the coordinator: given a Trigger, it discovers
// pipelines, filters them by trigger match, and runs each match as an
// independent PipelineRun.
package orchestrator

import (
	"context"
	"strings"

	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/parser"
	"github.com/JakobStaudinger/cinnabar/internal/shared/config"
	"github.com/JakobStaudinger/cinnabar/internal/sourcecontrol"
	"github.com/docker/docker/client"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pipelinesDirectory = ".cinnabar"
const pipelinesPrefix = ".cinnabar/pipelines/"

// Orchestrator wires the provider client and container runtime together and
// drives the trigger-to-completion path.
type Orchestrator struct {
	sourceControl sourcecontrol.SourceControl
	docker        *client.Client
	registries    []config.RegistryCredential
	logger        *zap.Logger
}

// New builds an Orchestrator.
func New(sourceControl sourcecontrol.SourceControl, docker *client.Client, registries []config.RegistryCredential, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{sourceControl: sourceControl, docker: docker, registries: registries, logger: logger}
}

// Dispatch is the fire-and-forget entry point called from the webhook
// layer: it owns its own scheduling and returns immediately, having spawned
// a detached goroutine to run handleTrigger.
func (o *Orchestrator) Dispatch(trigger domain.Trigger) {
	go o.handleTrigger(context.Background(), trigger)
}

func (o *Orchestrator) handleTrigger(ctx context.Context, trigger domain.Trigger) {
	logger := o.logger.With(
		zap.String("owner", trigger.RepositoryOwner),
		zap.String("repo", trigger.RepositoryName),
	)

	commit := trigger.Commit()

	installation, err := o.sourceControl.GetInstallation(ctx, trigger.RepositoryOwner, trigger.RepositoryName, trigger.InstallationID)
	if err != nil {
		logger.Error("failed to acquire installation", zap.Error(err))
		return
	}

	folder, err := installation.ReadFolder(ctx, pipelinesDirectory, commit)
	if err != nil {
		logger.Error("failed to list pipeline directory", zap.Error(err))
		return
	}

	var candidates []domain.File
	for _, file := range folder.Items {
		if strings.HasPrefix(file.Path, pipelinesPrefix) {
			candidates = append(candidates, file)
		}
	}

	if len(candidates) == 0 {
		return
	}

	configs, err := parseAll(ctx, candidates, installation, trigger)
	if err != nil {
		logger.Error("pipeline file failed to parse, aborting trigger", zap.Error(err))
		return
	}

	if remaining, limit, rlErr := installation.RateLimit(ctx); rlErr == nil {
		logger.Debug("github rate limit", zap.Int("remaining", remaining), zap.Int("limit", limit))
	}

	for _, cfg := range configs {
		run := newPipelineRun(cfg, installation, commit, o.docker, o.registries, logger)
		go run.execute(ctx)
	}
}

// parseAll fans out a parse task per candidate file, waits for all of them,
// and gates on any single error: a malformed file blocks the whole trigger,
// not just the pipeline it belongs to.
func parseAll(ctx context.Context, candidates []domain.File, installation sourcecontrol.Installation, trigger domain.Trigger) ([]domain.PipelineConfiguration, error) {
	results := make([]*domain.PipelineConfiguration, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, file := range candidates {
		i, file := i, file
		group.Go(func() error {
			config, err := parser.Parse(groupCtx, file, installation)
			if err != nil {
				return err
			}
			if config.Matches(trigger) {
				results[i] = &config
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	var matched []domain.PipelineConfiguration
	for _, r := range results {
		if r != nil {
			matched = append(matched, *r)
		}
	}
	return matched, nil
}
