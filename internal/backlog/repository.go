package backlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tralvick/backloghub/internal/ranking"
	"github.com/tralvick/backloghub/pkg/logger"
	"github.com/tralvick/backloghub/pkg/models"
)

// Repository reads and writes stored backlogs and the per-user
// wishlist ranking overrides.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateBacklog(userID string, req models.CreateBacklogRequest) (*models.Backlog, error) {
	rankingType := models.RankingType(req.RankingType)
	if rankingType == "" {
		rankingType = models.RankingRank
	}

	res, err := r.db.Exec(
		`INSERT INTO backlogs (user_id, kind, title, ranking_type) VALUES (?, ?, ?, ?)`,
		userID, req.Kind, req.Title, string(rankingType),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetBacklog(id)
}

// GetBacklog returns one backlog, or nil when it does not exist.
func (r *Repository) GetBacklog(id int64) (*models.Backlog, error) {
	var b models.Backlog
	err := r.db.QueryRow(
		`SELECT id, user_id, kind, title, ranking_type, created_at FROM backlogs WHERE id = ?`, id,
	).Scan(&b.ID, &b.UserID, &b.Kind, &b.Title, &b.RankingType, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *Repository) ListBacklogs(userID string) ([]models.Backlog, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, kind, title, ranking_type, created_at FROM backlogs WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backlogs []models.Backlog
	for rows.Next() {
		var b models.Backlog
		if err := rows.Scan(&b.ID, &b.UserID, &b.Kind, &b.Title, &b.RankingType, &b.CreatedAt); err != nil {
			return nil, err
		}
		backlogs = append(backlogs, b)
	}
	return backlogs, rows.Err()
}

func (r *Repository) DeleteBacklog(id int64) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM backlog_entries WHERE backlog_id = ?`, id); err != nil {
		return false, err
	}
	res, err := tx.Exec(`DELETE FROM backlogs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, tx.Commit()
}

// Entries returns a backlog's entry rows joined to the artifact
// attributes the ranking keys need.
func (r *Repository) Entries(backlogID int64) ([]models.BacklogEntry, error) {
	rows, err := r.db.Query(
		`SELECT be.backlog_id, be.artifact_id, a.title, be.rank, be.elo, be.date_added, a.release_date, be.tags
         FROM backlog_entries be
         JOIN artifacts a ON be.artifact_id = a.id
         WHERE be.backlog_id = ?`,
		backlogID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.BacklogEntry
	for rows.Next() {
		var e models.BacklogEntry
		var rank sql.NullInt64
		var release sql.NullString
		var tagsJSON sql.NullString

		err := rows.Scan(&e.BacklogID, &e.ArtifactID, &e.Title, &rank, &e.Elo, &e.DateAdded, &release, &tagsJSON)
		if err != nil {
			return nil, err
		}
		if rank.Valid {
			v := int(rank.Int64)
			e.Rank = &v
		}
		e.ReleaseDate = epochMillisToTime(release.String)
		if tagsJSON.Valid && tagsJSON.String != "" {
			if err := json.Unmarshal([]byte(tagsJSON.String), &e.Tags); err != nil {
				logger.GetLogger().Warn("entry_tags_unreadable",
					"backlog_id", e.BacklogID, "artifact_id", e.ArtifactID, "error", err.Error())
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddEntry inserts an entry with the default Elo; re-adding an
// existing artifact updates its rank and tags instead.
func (r *Repository) AddEntry(backlogID int64, req models.AddEntryRequest) error {
	tagsJSON, err := json.Marshal(req.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO backlog_entries (backlog_id, artifact_id, rank, elo, date_added, tags)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(backlog_id, artifact_id) DO UPDATE SET rank = excluded.rank, tags = excluded.tags`,
		backlogID, req.ArtifactID, req.Rank, ranking.DefaultElo, time.Now().UTC(), string(tagsJSON),
	)
	return err
}

func (r *Repository) RemoveEntry(backlogID, artifactID int64) (bool, error) {
	res, err := r.db.Exec(
		`DELETE FROM backlog_entries WHERE backlog_id = ? AND artifact_id = ?`,
		backlogID, artifactID,
	)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r *Repository) SetRank(backlogID, artifactID int64, rank int) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE backlog_entries SET rank = ? WHERE backlog_id = ? AND artifact_id = ?`,
		rank, backlogID, artifactID,
	)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

// Duel applies one pairwise comparison inside a backlog and returns
// the updated (winner, loser) Elo scores.
func (r *Repository) Duel(backlogID, winnerID, loserID int64) (float64, float64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	winnerElo, err := entryElo(tx, backlogID, winnerID)
	if err != nil {
		return 0, 0, err
	}
	loserElo, err := entryElo(tx, backlogID, loserID)
	if err != nil {
		return 0, 0, err
	}

	newWinner, newLoser := ranking.UpdateElo(winnerElo, loserElo)

	if _, err := tx.Exec(`UPDATE backlog_entries SET elo = ? WHERE backlog_id = ? AND artifact_id = ?`, newWinner, backlogID, winnerID); err != nil {
		return 0, 0, err
	}
	if _, err := tx.Exec(`UPDATE backlog_entries SET elo = ? WHERE backlog_id = ? AND artifact_id = ?`, newLoser, backlogID, loserID); err != nil {
		return 0, 0, err
	}
	return newWinner, newLoser, tx.Commit()
}

func entryElo(tx *sql.Tx, backlogID, artifactID int64) (float64, error) {
	var elo float64
	err := tx.QueryRow(
		`SELECT elo FROM backlog_entries WHERE backlog_id = ? AND artifact_id = ?`,
		backlogID, artifactID,
	).Scan(&elo)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("artifact %d is not in backlog %d", artifactID, backlogID)
	}
	return elo, err
}

// WishlistRows returns every artifact of one kind the user has marked
// wishlist, joined to that user's Elo/rank overrides. The user state's
// start date doubles as the entry's date added. Release filtering and
// ordering are the resolver's job.
func (r *Repository) WishlistRows(userID string, kind models.ArtifactKind) ([]models.BacklogEntry, error) {
	rows, err := r.db.Query(
		`SELECT us.artifact_id, a.title, a.release_date, us.start_date, wr.elo, wr.rank
         FROM user_states us
         JOIN artifacts a ON us.artifact_id = a.id
         LEFT JOIN wishlist_rankings wr ON wr.user_id = us.user_id AND wr.artifact_id = us.artifact_id
         WHERE us.user_id = ? AND us.status = ? AND a.kind = ?`,
		userID, string(models.StatusWishlist), string(kind),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.BacklogEntry
	for rows.Next() {
		var e models.BacklogEntry
		var release sql.NullString
		var start sql.NullTime
		var elo sql.NullFloat64
		var rank sql.NullInt64

		if err := rows.Scan(&e.ArtifactID, &e.Title, &release, &start, &elo, &rank); err != nil {
			return nil, err
		}
		e.ReleaseDate = epochMillisToTime(release.String)
		if start.Valid {
			e.DateAdded = start.Time
		}
		e.Elo = ranking.DefaultElo
		if elo.Valid {
			e.Elo = elo.Float64
		}
		if rank.Valid {
			v := int(rank.Int64)
			e.Rank = &v
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// WishlistDuel applies one pairwise comparison to the per-user Elo
// overrides, creating missing override rows at the default Elo.
func (r *Repository) WishlistDuel(userID string, winnerID, loserID int64) (float64, float64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	winnerElo, err := overrideElo(tx, userID, winnerID)
	if err != nil {
		return 0, 0, err
	}
	loserElo, err := overrideElo(tx, userID, loserID)
	if err != nil {
		return 0, 0, err
	}

	newWinner, newLoser := ranking.UpdateElo(winnerElo, loserElo)

	if err := upsertOverrideElo(tx, userID, winnerID, newWinner); err != nil {
		return 0, 0, err
	}
	if err := upsertOverrideElo(tx, userID, loserID, newLoser); err != nil {
		return 0, 0, err
	}
	return newWinner, newLoser, tx.Commit()
}

func overrideElo(tx *sql.Tx, userID string, artifactID int64) (float64, error) {
	var elo float64
	err := tx.QueryRow(
		`SELECT elo FROM wishlist_rankings WHERE user_id = ? AND artifact_id = ?`,
		userID, artifactID,
	).Scan(&elo)
	if err == sql.ErrNoRows {
		return ranking.DefaultElo, nil
	}
	return elo, err
}

func upsertOverrideElo(tx *sql.Tx, userID string, artifactID int64, elo float64) error {
	_, err := tx.Exec(
		`INSERT INTO wishlist_rankings (user_id, artifact_id, elo) VALUES (?, ?, ?)
         ON CONFLICT(user_id, artifact_id) DO UPDATE SET elo = excluded.elo`,
		userID, artifactID, elo,
	)
	return err
}

// SetWishlistRank stores a per-user manual rank override used when the
// wishlist view is ordered by rank.
func (r *Repository) SetWishlistRank(userID string, artifactID int64, rank int) error {
	_, err := r.db.Exec(
		`INSERT INTO wishlist_rankings (user_id, artifact_id, elo, rank) VALUES (?, ?, ?, ?)
         ON CONFLICT(user_id, artifact_id) DO UPDATE SET rank = excluded.rank`,
		userID, artifactID, ranking.DefaultElo, rank,
	)
	return err
}

func epochMillisToTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
