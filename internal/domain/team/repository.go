package team

import "context"

// Repository describes team persistence needs from use cases.
// List returns teams ordered by name, then id.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
}
