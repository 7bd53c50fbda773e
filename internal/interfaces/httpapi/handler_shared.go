package httpapi

import (
	"context"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/standing"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

type resolveRoundRequest struct {
	GameID string `json:"game_id" validate:"required"`
	Day    string `json:"day" validate:"required"`
}

type mvpRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	Points   int64  `json:"points" validate:"gt=0"`
}

type addPointsRequest struct {
	GameID   string      `json:"game_id" validate:"required_without=RoundID"`
	Day      string      `json:"day"`
	RoundID  string      `json:"round_id"`
	TeamID   string      `json:"team_id" validate:"required"`
	PlayerID string      `json:"player_id"`
	Points   int64       `json:"points" validate:"ne=0"`
	Reason   string      `json:"reason"`
	MVP      *mvpRequest `json:"mvp" validate:"omitempty"`
}

type addTeamPointsRequest struct {
	GameID       string           `json:"game_id" validate:"required"`
	Day          string           `json:"day"`
	TeamID       string           `json:"team_id" validate:"required"`
	TotalPoints  int64            `json:"total_points" validate:"ne=0"`
	Distribution map[string]int64 `json:"distribution" validate:"required,min=1"`
	Reason       string           `json:"reason"`
}

type reconcileJobRequest struct {
	TeamIDs []string `json:"team_ids" validate:"omitempty,dive,required"`
	DryRun  bool     `json:"dry_run"`
}

type teamDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type playerDTO struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id"`
	Name   string `json:"name"`
}

type gameDTO struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type roundDTO struct {
	ID          string `json:"id"`
	GameID      string `json:"game_id"`
	Day         string `json:"day"`
	RoundNumber int    `json:"round_number"`
	CreatedAt   string `json:"created_at"`
}

type entryDTO struct {
	ID         string `json:"id"`
	RoundID    string `json:"round_id"`
	TeamID     string `json:"team_id"`
	PlayerID   string `json:"player_id,omitempty"`
	Points     int64  `json:"points"`
	Reason     string `json:"reason"`
	CreatedBy  string `json:"created_by"`
	ReversalOf string `json:"reversal_of,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type entryViewDTO struct {
	ID         string `json:"id"`
	RoundID    string `json:"round_id"`
	TeamID     string `json:"team_id"`
	PlayerID   string `json:"player_id,omitempty"`
	Points     int64  `json:"points"`
	Reason     string `json:"reason"`
	CreatedBy  string `json:"created_by"`
	ReversalOf string `json:"reversal_of,omitempty"`
	CreatedAt  string `json:"created_at"`
	GameID     string `json:"game_id"`
	Day        string `json:"day"`
	TeamName   string `json:"team_name"`
	TeamColor  string `json:"team_color"`
	PlayerName string `json:"player_name,omitempty"`
}

type scoreResultDTO struct {
	Round    roundDTO   `json:"round"`
	Entries  []entryDTO `json:"entries"`
	NewTotal int64      `json:"new_total"`
}

type undoResultDTO struct {
	Original entryViewDTO `json:"original"`
	Reversal entryDTO     `json:"reversal"`
	NewTotal int64        `json:"new_total"`
}

type playerPointsDTO struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Points   int64  `json:"points"`
}

type standingRowDTO struct {
	Rank       int               `json:"rank"`
	TeamID     string            `json:"team_id"`
	Name       string            `json:"name"`
	Color      string            `json:"color"`
	AvatarURL  string            `json:"avatar_url,omitempty"`
	Points     int64             `json:"points"`
	TopPlayers []playerPointsDTO `json:"top_players"`
}

type gameStandingsDTO struct {
	Game  gameDTO          `json:"game"`
	Teams []standingRowDTO `json:"teams"`
}

type snapshotDTO struct {
	ID        string           `json:"id"`
	Day       string           `json:"day"`
	LockedBy  string           `json:"locked_by,omitempty"`
	CreatedAt string           `json:"created_at"`
	Snapshot  snapshot.Payload `json:"snapshot"`
}

type snapshotSummaryDTO struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	LockedBy  string `json:"locked_by,omitempty"`
	CreatedAt string `json:"created_at"`
	Leader    string `json:"leader_team_id,omitempty"`
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{ID: v.ID, Name: v.Name, Color: v.Color, AvatarURL: v.AvatarURL}
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{ID: v.ID, TeamID: v.TeamID, Name: v.Name}
}

func gameToDTO(v game.Game) gameDTO {
	return gameDTO{ID: v.ID, Slug: v.Slug, Title: v.Title, Description: v.Description}
}

func roundToDTO(v round.Round) roundDTO {
	return roundDTO{
		ID:          v.ID,
		GameID:      v.GameID,
		Day:         v.Day.String(),
		RoundNumber: v.RoundNumber,
		CreatedAt:   formatTime(v.CreatedAt),
	}
}

func entryToDTO(v scoring.Entry) entryDTO {
	return entryDTO{
		ID:         v.ID,
		RoundID:    v.RoundID,
		TeamID:     v.TeamID,
		PlayerID:   v.PlayerID,
		Points:     v.Points,
		Reason:     v.Reason,
		CreatedBy:  v.CreatedBy,
		ReversalOf: v.ReversalOf,
		CreatedAt:  formatTime(v.CreatedAt),
	}
}

func entryViewToDTO(v scoring.EntryView) entryViewDTO {
	return entryViewDTO{
		ID:         v.ID,
		RoundID:    v.RoundID,
		TeamID:     v.TeamID,
		PlayerID:   v.PlayerID,
		Points:     v.Points,
		Reason:     v.Reason,
		CreatedBy:  v.CreatedBy,
		ReversalOf: v.ReversalOf,
		CreatedAt:  formatTime(v.CreatedAt),
		GameID:     v.GameID,
		Day:        v.Day.String(),
		TeamName:   v.TeamName,
		TeamColor:  v.TeamColor,
		PlayerName: v.PlayerName,
	}
}

func scoreResultToDTO(ctx context.Context, v usecase.AddPointsResult) scoreResultDTO {
	_, span := startSpan(ctx, "httpapi.scoreResultToDTO")
	defer span.End()

	entries := make([]entryDTO, 0, len(v.Entries))
	for _, item := range v.Entries {
		entries = append(entries, entryToDTO(item))
	}
	return scoreResultDTO{
		Round:    roundToDTO(v.Round),
		Entries:  entries,
		NewTotal: v.NewTotal,
	}
}

func standingRowsToDTO(ctx context.Context, rows []standing.Row) []standingRowDTO {
	_, span := startSpan(ctx, "httpapi.standingRowsToDTO")
	defer span.End()

	items := make([]standingRowDTO, 0, len(rows))
	for _, row := range rows {
		players := make([]playerPointsDTO, 0, len(row.TopPlayers))
		for _, p := range row.TopPlayers {
			players = append(players, playerPointsDTO{PlayerID: p.PlayerID, Name: p.Name, Points: p.Points})
		}
		items = append(items, standingRowDTO{
			Rank:       row.Rank,
			TeamID:     row.TeamID,
			Name:       row.Name,
			Color:      row.Color,
			AvatarURL:  row.AvatarURL,
			Points:     row.Points,
			TopPlayers: players,
		})
	}
	return items
}

func snapshotToDTO(v snapshot.DailySnapshot) snapshotDTO {
	return snapshotDTO{
		ID:        v.ID,
		Day:       v.Day.String(),
		LockedBy:  v.LockedBy,
		CreatedAt: formatTime(v.CreatedAt),
		Snapshot:  v.Payload,
	}
}

func snapshotToSummaryDTO(v snapshot.DailySnapshot) snapshotSummaryDTO {
	item := snapshotSummaryDTO{
		ID:        v.ID,
		Day:       v.Day.String(),
		LockedBy:  v.LockedBy,
		CreatedAt: formatTime(v.CreatedAt),
	}
	if len(v.Payload.OrderedTeams) > 0 {
		item.Leader = v.Payload.OrderedTeams[0].TeamID
	}
	return item
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
