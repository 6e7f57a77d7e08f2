package dag

import (
	"context"
	"fmt"

	"github.com/WebHeroSchool/laleniko-personal-page/internal/ctxlog"
	"github.com/WebHeroSchool/laleniko-personal-page/internal/registry"
)

// Build constructs a complete, validated dependency graph from the registry.
func Build(ctx context.Context, r *registry.Registry) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	g := New()

	// First pass: create all nodes.
	tasks := r.Tasks()
	for _, t := range tasks {
		g.AddNode(t)
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.Len())

	// Second pass: link prerequisites.
	for _, t := range tasks {
		for _, dep := range t.Deps {
			if err := g.AddEdge(dep, t.Name); err != nil {
				return nil, fmt.Errorf("linking task '%s': %w", t.Name, err)
			}
		}
	}
	logger.Debug("Build: Node linking complete.")

	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Graph construction successful.")
	return g, nil
}
