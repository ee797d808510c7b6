package cli

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shinji-kodama/sqlfluff-check/internal/docker"
	"github.com/shinji-kodama/sqlfluff-check/internal/lint"
)

// closableLinter is a lint.Linter holding resources such as a Docker
// connection.
type closableLinter interface {
	lint.Linter
	Close() error
}

// linterFactory builds the linter selected by settings.
type linterFactory func(ctx context.Context, s settings, logger *zap.Logger) (closableLinter, error)

// processLinter adapts lint.ProcessLinter, which holds no resources.
type processLinter struct {
	*lint.ProcessLinter
}

func (processLinter) Close() error { return nil }

// containerLinter owns the Docker client used by its docker.Linter.
type containerLinter struct {
	*docker.Linter
	client *docker.Client
}

func (c containerLinter) Close() error { return c.client.Close() }

// newLinter is the production linterFactory. With a Docker image
// configured it connects to the daemon; otherwise it runs the local
// sqlfluff command in the current working directory.
func newLinter(ctx context.Context, s settings, logger *zap.Logger) (closableLinter, error) {
	if s.DockerImage == "" {
		return processLinter{lint.NewProcessLinter(s.Command, "", logger)}, nil
	}

	cli, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, err
	}

	l, err := docker.NewLinter(cli, s.DockerImage, ".", logger)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	return containerLinter{Linter: l, client: cli}, nil
}

// lazyLinter defers building the real linter until the first file is
// checked, so runs that stop at a precondition never start sqlfluff or
// contact Docker.
type lazyLinter struct {
	build func() (closableLinter, error)

	once  sync.Once
	inner closableLinter
	err   error
}

func newLazyLinter(build func() (closableLinter, error)) *lazyLinter {
	return &lazyLinter{build: build}
}

func (l *lazyLinter) get() (closableLinter, error) {
	l.once.Do(func() {
		l.inner, l.err = l.build()
	})
	return l.inner, l.err
}

// Parse implements lint.Linter.
func (l *lazyLinter) Parse(ctx context.Context, path string) (lint.Result, error) {
	inner, err := l.get()
	if err != nil {
		return lint.Result{}, err
	}
	return inner.Parse(ctx, path)
}

// Format implements lint.Linter.
func (l *lazyLinter) Format(ctx context.Context, path string) (lint.Result, error) {
	inner, err := l.get()
	if err != nil {
		return lint.Result{}, err
	}
	return inner.Format(ctx, path)
}

// Close releases the inner linter if it was ever built.
func (l *lazyLinter) Close() error {
	if l.inner == nil {
		return nil
	}
	return l.inner.Close()
}
