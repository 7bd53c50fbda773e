package postgres

import (
	"database/sql"
	"time"
)

// dayColumn renders a DATE column as YYYY-MM-DD independent of DateStyle.
func dayColumn(column, alias string) string {
	return "to_char(" + column + ", 'YYYY-MM-DD') AS " + alias
}

type teamTableModel struct {
	PublicID  string         `db:"public_id"`
	Name      string         `db:"name"`
	Color     string         `db:"color"`
	AvatarURL sql.NullString `db:"avatar_url"`
}

type playerTableModel struct {
	PublicID     string         `db:"public_id"`
	TeamPublicID string         `db:"team_public_id"`
	Name         string         `db:"name"`
	Phone        sql.NullString `db:"phone"`
}

type gameTableModel struct {
	PublicID    string         `db:"public_id"`
	Slug        string         `db:"slug"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
}

type roundTableModel struct {
	PublicID     string    `db:"public_id"`
	GamePublicID string    `db:"game_public_id"`
	Day          string    `db:"day"`
	RoundNumber  int       `db:"round_number"`
	CreatedAt    time.Time `db:"created_at"`
}

type roundInsertModel struct {
	PublicID     string    `db:"public_id"`
	GamePublicID string    `db:"game_public_id"`
	Day          string    `db:"day"`
	RoundNumber  int       `db:"round_number"`
	CreatedAt    time.Time `db:"created_at"`
}

type scoreEntryTableModel struct {
	PublicID       string         `db:"public_id"`
	RoundPublicID  string         `db:"round_public_id"`
	TeamPublicID   string         `db:"team_public_id"`
	PlayerPublicID sql.NullString `db:"player_public_id"`
	Points         int64          `db:"points"`
	Reason         string         `db:"reason"`
	CreatedBy      string         `db:"created_by"`
	ReversalOf     sql.NullString `db:"reversal_of"`
	CreatedAt      time.Time      `db:"created_at"`
}

type scoreEntryViewModel struct {
	scoreEntryTableModel
	GamePublicID string         `db:"game_public_id"`
	Day          string         `db:"day"`
	TeamName     string         `db:"team_name"`
	TeamColor    string         `db:"team_color"`
	PlayerName   sql.NullString `db:"player_name"`
}

type scoreEntryInsertModel struct {
	PublicID       string    `db:"public_id"`
	RoundPublicID  string    `db:"round_public_id"`
	TeamPublicID   string    `db:"team_public_id"`
	PlayerPublicID *string   `db:"player_public_id"`
	Points         int64     `db:"points"`
	Reason         string    `db:"reason"`
	CreatedBy      string    `db:"created_by"`
	ReversalOf     *string   `db:"reversal_of"`
	CreatedAt      time.Time `db:"created_at"`
}

type teamAggregateTableModel struct {
	TeamPublicID string    `db:"team_public_id"`
	TotalPoints  int64     `db:"total_points"`
	LastUpdated  time.Time `db:"last_updated"`
}

type dailySnapshotTableModel struct {
	PublicID  string         `db:"public_id"`
	Day       string         `db:"day"`
	Payload   []byte         `db:"payload"`
	LockedBy  sql.NullString `db:"locked_by"`
	CreatedAt time.Time      `db:"created_at"`
}

type dailySnapshotInsertModel struct {
	PublicID  string    `db:"public_id"`
	Day       string    `db:"day"`
	Payload   string    `db:"payload"`
	LockedBy  *string   `db:"locked_by"`
	CreatedAt time.Time `db:"created_at"`
}
