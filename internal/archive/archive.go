package archive

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"siege-client/internal/protocol"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Archive is the client's local sqlite store: the viewer's profile and a
// record of finished games. Everything here is best effort; the live mirror
// never depends on it.
type Archive struct {
	db *sql.DB
}

// Profile is the locally remembered identity hint.
type Profile struct {
	DisplayName string
	LobbyURL    string
	UpdatedAt   time.Time
}

// Result is one archived finished game.
type Result struct {
	GameID      string
	RoomID      string
	ViewerScore int
	WinnerName  string
	WinnerScore int
	EndedAt     time.Time
}

// Open opens (creating if needed) the archive at path and applies any
// pending migrations.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Archive{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveProfile upserts the single profile row.
func (a *Archive) SaveProfile(displayName, lobbyURL string) error {
	query := `
		INSERT OR REPLACE INTO profile (id, display_name, lobby_url, updated_at)
		VALUES (1, ?, ?, ?)
	`
	if _, err := a.db.Exec(query, displayName, lobbyURL, time.Now()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// LoadProfile returns the stored profile. A missing row is not an error; it
// returns a zero profile.
func (a *Archive) LoadProfile() (Profile, error) {
	var p Profile
	query := `SELECT display_name, lobby_url, updated_at FROM profile WHERE id = 1`
	err := a.db.QueryRow(query).Scan(&p.DisplayName, &p.LobbyURL, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// RecordResult archives a finished game snapshot, keyed by game id so a
// re-delivered final snapshot overwrites rather than duplicates.
func (a *Archive) RecordResult(snap protocol.GameSnapshot) error {
	viewerScore := 0
	winnerName := ""
	winnerScore := 0
	for _, p := range snap.Players {
		if p.MemberID == snap.Viewer.MemberID {
			viewerScore = p.Score
		}
		if p.Score > winnerScore || winnerName == "" {
			winnerName = p.Name
			winnerScore = p.Score
		}
	}

	query := `
		INSERT OR REPLACE INTO finished_games
			(game_id, room_id, viewer_score, winner_name, winner_score, ended_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := a.db.Exec(query, snap.GameID, snap.RoomID, viewerScore, winnerName, winnerScore, time.Now())
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// RecentResults returns up to limit archived games, newest first.
func (a *Archive) RecentResults(limit int) ([]Result, error) {
	query := `
		SELECT game_id, room_id, viewer_score, winner_name, winner_score, ended_at
		FROM finished_games
		ORDER BY ended_at DESC
		LIMIT ?
	`
	rows, err := a.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.GameID, &r.RoomID, &r.ViewerScore, &r.WinnerName, &r.WinnerScore, &r.EndedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
