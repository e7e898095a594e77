package orchestrator

import (
	"context"
	"fmt"

	"github.com/JakobStaudinger/cinnabar/internal/cinnaerr"
	"github.com/JakobStaudinger/cinnabar/internal/domain"
	"github.com/JakobStaudinger/cinnabar/internal/runtime/docker"
	"github.com/JakobStaudinger/cinnabar/internal/shared/config"
	"github.com/JakobStaudinger/cinnabar/internal/sourcecontrol"
	dockerclient "github.com/docker/docker/client"
	"go.uber.org/zap"
)

// pipelineRun drives one Pipeline instance through its state machine:
// Pending -> Running -> InStep(0..K) -> Passed|Failed. Steps are strictly
// sequential; the first non-zero exit short-circuits the rest.
type pipelineRun struct {
	pipeline     domain.Pipeline
	installation sourcecontrol.Installation
	commit       string
	docker       *dockerclient.Client
	registries   []config.RegistryCredential
	logger       *zap.Logger
}

func newPipelineRun(cfg domain.PipelineConfiguration, installation sourcecontrol.Installation, commit string, cli *dockerclient.Client, registries []config.RegistryCredential, logger *zap.Logger) *pipelineRun {
	pipeline := domain.NewPipeline(cfg)
	return &pipelineRun{
		pipeline:     pipeline,
		installation: installation,
		commit:       commit,
		docker:       cli,
		registries:   registries,
		logger:       logger.With(zap.Uint64("pipeline_id", uint64(pipeline.ID)), zap.String("name", pipeline.Configuration.Name)),
	}
}

// execute runs the pipeline to completion. Errors creating the workspace or
// cache volumes, and any RuntimeError surfaced while running a step (a
// failed pull, token mint, container create, or container run — as opposed
// to the container simply exiting non-zero), are fatal to the pipeline and
// terminate it without emitting a Passed/Failed terminal check: the run
// never reached a state worth reporting as a verdict.
func (r *pipelineRun) execute(ctx context.Context) {
	logger := r.logger

	workspaceName := fmt.Sprintf("workspace-pipeline-%d", r.pipeline.ID)
	workspace, err := docker.CreateVolume(ctx, r.docker, workspaceName)
	if err != nil {
		logger.Error("failed to create workspace volume", zap.Error(err))
		return
	}

	for _, step := range r.pipeline.Steps {
		for _, cacheName := range step.Configuration.Cache {
			if _, err := docker.CreateVolume(ctx, r.docker, cacheName); err != nil {
				logger.Error("failed to create cache volume", zap.Error(err))
				return
			}
		}
	}

	r.pipeline.Status = domain.StatusRunning
	if err := r.postCheck(ctx, domain.CheckRunning); err != nil {
		logger.Error("failed to post running check", zap.Error(err))
	}

	status := domain.StatusPassed
	for i := range r.pipeline.Steps {
		exitCode, err := r.runStep(ctx, workspace, &r.pipeline.Steps[i])
		if err != nil {
			if cinnaerr.Is(err, cinnaerr.RuntimeError) {
				logger.Error("runtime error, aborting pipeline without a terminal check", zap.Int("step", r.pipeline.Steps[i].ID), zap.Error(err))
				return
			}
			logger.Error("step failed", zap.Int("step", r.pipeline.Steps[i].ID), zap.Error(err))
			status = domain.StatusFailed
			break
		}
		if !exitCode.IsOk() {
			status = domain.StatusFailed
			break
		}
	}

	r.pipeline.Status = status

	if err := workspace.Remove(ctx); err != nil {
		logger.Error("failed to remove workspace volume", zap.Error(err))
	}

	checkStatus := domain.CheckPassed
	if status == domain.StatusFailed {
		checkStatus = domain.CheckFailed
	}
	if err := r.postCheck(ctx, checkStatus); err != nil {
		logger.Error("failed to post terminal check", zap.Error(err))
	}
}

func (r *pipelineRun) runStep(ctx context.Context, workspace *docker.Volume, step *domain.Step) (docker.ExitCode, error) {
	step.Status = domain.StepRunning

	imageRef := domainImageReference(step.Configuration.Image)
	if err := docker.PullImage(ctx, r.docker, imageRef, r.registries); err != nil {
		return 0, err
	}

	accessToken, err := r.installation.AccessToken(ctx)
	if err != nil {
		// Reclassified as a RuntimeError here: minting a token is part of
		// preparing the step's container runtime, and a failure here must
		// abort the pipeline the same way a failed pull or create would,
		// not be mistaken for an ordinary step failure.
		return 0, cinnaerr.Wrap(cinnaerr.RuntimeError, "failed to mint installation access token", err)
	}

	container, err := docker.CreateContainer(ctx, r.docker, r.pipeline.ID, *step, workspace, accessToken)
	if err != nil {
		return 0, err
	}

	exitCode, runErr := container.Run(ctx)

	if err := container.Remove(ctx); err != nil {
		r.logger.Error("failed to remove container", zap.Error(err))
	}

	if runErr != nil {
		return 0, runErr
	}

	if exitCode.IsOk() {
		step.Status = domain.StepPassed
	} else {
		step.Status = domain.StepFailed
	}

	return exitCode, nil
}

func (r *pipelineRun) postCheck(ctx context.Context, status domain.CheckStatus) error {
	return r.installation.UpdateStatusCheck(ctx, r.commit, r.pipeline.Configuration.Name, uint64(r.pipeline.ID), status)
}

func domainImageReference(raw string) domain.DockerImageReference {
	return domain.ParseDockerImageReference(raw)
}
