package services

import (
	"context"

	"github.com/snap-point/follow-api/models"
	"github.com/snap-point/follow-api/repositories"
)

// Visibility decides whether an actor may see or interact with a profile's
// content. Every content handler asks it; none of them re-derive the rule.
type Visibility struct {
	graph *repositories.Graph
}

func NewVisibility(graph *repositories.Graph) *Visibility {
	return &Visibility{graph: graph}
}

// CanViewOrInteract is true for public profiles, for the owner, and for
// accepted followers of a private profile.
func (v *Visibility) CanViewOrInteract(ctx context.Context, actorProfileID uint, target *models.Profile) (bool, error) {
	if !target.Private || actorProfileID == target.ID {
		return true, nil
	}
	return v.graph.WithContext(ctx).IsFollower(target.ID, actorProfileID)
}
