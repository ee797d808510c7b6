package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
)

// DefaultImage is the official sqlfluff image. Its entrypoint is the
// sqlfluff CLI, so the container command is just "<mode> <file>".
const DefaultImage = "sqlfluff/sqlfluff:latest"

// MountTarget is where the host working directory appears inside the
// container. It is also the container's working directory, so sqlfluff
// discovers the project's .sqlfluff exactly as it would on the host.
const MountTarget = "/sql"

// Linter runs sqlfluff in a fresh container for every file and mode.
// It implements lint.Linter.
type Linter struct {
	cli     *Client
	image   string
	workDir string
	user    string
	logger  *zap.Logger

	// imageReady is set once the image is known to exist locally.
	imageReady bool
}

// NewLinter creates a containerised linter. workDir is the host directory
// to mount; files passed to Parse/Format must live beneath it. An empty
// image selects DefaultImage.
func NewLinter(cli *Client, imageRef, workDir string, logger *zap.Logger) (*Linter, error) {
	if imageRef == "" {
		imageRef = DefaultImage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory %q: %w", workDir, err)
	}

	return &Linter{
		cli:     cli,
		image:   imageRef,
		workDir: absDir,
		user:    hostUser(),
		logger:  logger,
	}, nil
}

// Parse runs "sqlfluff parse <file>" in a container.
func (l *Linter) Parse(ctx context.Context, path string) (lint.Result, error) {
	return l.run(ctx, lint.ModeParse, path)
}

// Format runs "sqlfluff format <file>" in a container. Rewrites reach the
// host through the bind mount.
func (l *Linter) Format(ctx context.Context, path string) (lint.Result, error) {
	return l.run(ctx, lint.ModeFormat, path)
}

// run creates, starts, waits for and removes one linter container,
// returning its exit status and stderr.
func (l *Linter) run(ctx context.Context, mode lint.Mode, path string) (lint.Result, error) {
	rel, err := l.containerPath(path)
	if err != nil {
		return lint.Result{}, err
	}

	if err := l.ensureImage(ctx); err != nil {
		return lint.Result{}, err
	}

	api := l.cli.inner
	resp, err := api.ContainerCreate(ctx,
		&container.Config{
			Image:      l.image,
			Cmd:        []string{mode.String(), rel},
			WorkingDir: MountTarget,
			User:       l.user,
			Labels:     BuildLabels(mode, path),
		},
		&container.HostConfig{
			Mounts: []mount.Mount{{
				Type:   mount.TypeBind,
				Source: l.workDir,
				Target: MountTarget,
			}},
		},
		nil, nil, "")
	if err != nil {
		return lint.Result{}, fmt.Errorf("create %s container for %s: %w", mode, path, err)
	}

	// Removal must still happen when ctx was cancelled mid-run.
	defer func() {
		if rmErr := api.ContainerRemove(context.WithoutCancel(ctx), resp.ID,
			container.RemoveOptions{Force: true}); rmErr != nil {
			l.logger.Warn("Failed to remove linter container",
				zap.String("containerID", resp.ID),
				zap.Error(rmErr))
		}
	}()

	l.logger.Debug("Starting linter container",
		zap.String("containerID", resp.ID),
		zap.String("image", l.image),
		zap.String("mode", mode.String()),
		zap.String("path", rel))

	if err := api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return lint.Result{}, fmt.Errorf("start %s container for %s: %w", mode, path, err)
	}

	exitCode, err := waitForExit(ctx, api, resp.ID)
	if err != nil {
		return lint.Result{}, fmt.Errorf("wait for %s container for %s: %w", mode, path, err)
	}

	stderr, err := collectStderr(ctx, api, resp.ID)
	if err != nil {
		return lint.Result{}, fmt.Errorf("read %s container logs for %s: %w", mode, path, err)
	}

	return lint.Result{ExitCode: exitCode, Stderr: stderr}, nil
}

// containerPath maps a host path to a path relative to MountTarget.
// Paths outside the mounted directory cannot be reached from the container.
func (l *Linter) containerPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}

	rel, err := filepath.Rel(l.workDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the mounted directory %s", path, l.workDir)
	}

	return filepath.ToSlash(rel), nil
}

// ensureImage pulls the linter image unless it is already present.
func (l *Linter) ensureImage(ctx context.Context) error {
	if l.imageReady {
		return nil
	}

	api := l.cli.inner
	images, err := api.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", l.image)),
	})
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}

	if len(images) == 0 {
		l.logger.Info("Pulling linter image", zap.String("image", l.image))

		rc, err := api.ImagePull(ctx, l.image, image.PullOptions{})
		if err != nil {
			return fmt.Errorf("pull image %s: %w", l.image, err)
		}
		defer rc.Close()

		// The pull only completes once its progress stream is drained.
		if _, err := io.Copy(io.Discard, rc); err != nil {
			return fmt.Errorf("pull image %s: %w", l.image, err)
		}
	}

	l.imageReady = true
	return nil
}

// waitForExit blocks until the container stops and returns its exit code.
func waitForExit(ctx context.Context, api engineAPI, id string) (int, error) {
	statusCh, errCh := api.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return 0, err
	case status := <-statusCh:
		if status.Error != nil && status.Error.Message != "" {
			return 0, fmt.Errorf("%s", status.Error.Message)
		}
		return int(status.StatusCode), nil
	}
}

// collectStderr reads the container's stderr stream. The log stream is
// multiplexed, so stdcopy splits it and stdout is dropped.
func collectStderr(ctx context.Context, api engineAPI, id string) (string, error) {
	rc, err := api.ContainerLogs(ctx, id, container.LogsOptions{ShowStderr: true})
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(io.Discard, &stderr, rc); err != nil {
		return "", err
	}
	return stderr.String(), nil
}

// hostUser returns "uid:gid" of the current process so files rewritten by
// "format" keep their owner. Windows has no numeric ids.
func hostUser() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}
