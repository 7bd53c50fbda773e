package player

// Player is a camper. TeamID is empty for players not assigned to any team.
type Player struct {
	ID     string
	TeamID string
	Name   string
	Phone  string
}

func (p Player) BelongsTo(teamID string) bool {
	return p.TeamID != "" && p.TeamID == teamID
}
