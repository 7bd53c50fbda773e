package team

import (
	"fmt"
	"strings"
)

// Team is a competing camp team. Teams are reference data managed outside
// the scoreboard and never mutated by scoring operations.
type Team struct {
	ID        string
	Name      string
	Color     string
	AvatarURL string
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
