package pipeline

import (
	"context"
	"fmt"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
)

// Stage transforms a set of files.
type Stage interface {
	Name() string
	Transform(ctx context.Context, files []File) ([]File, error)
}

// StageFunc adapts a per-file function to the Stage interface.
type StageFunc struct {
	Label string
	Fn    func(ctx context.Context, f File) (File, error)
}

// Name implements Stage.
func (s StageFunc) Name() string { return s.Label }

// Transform applies Fn to each file in order.
func (s StageFunc) Transform(ctx context.Context, files []File) ([]File, error) {
	out := make([]File, 0, len(files))
	for _, f := range files {
		nf, err := s.Fn(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		out = append(out, nf)
	}
	return out, nil
}

// Run passes files through the stages in order. A nil stage is skipped,
// which lets callers toggle stages such as minification inline.
func Run(ctx context.Context, files []File, stages ...Stage) ([]File, error) {
	logger := ctxlog.FromContext(ctx)

	for _, s := range stages {
		if s == nil {
			continue
		}
		logger.Debug("Running pipeline stage.", "stage", s.Name(), "files", len(files))
		var err error
		files, err = s.Transform(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.Name(), err)
		}
	}
	return files, nil
}
