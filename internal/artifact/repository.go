package artifact

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tralvick/backloghub/pkg/models"
)

// Repository reads and writes artifact trees. The handle is injected so
// the tree core stays testable against a throwaway database.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const artifactColumns = `id, title, kind, parent_id, child_index, duration, release_date, description`

func scanArtifactRow(scanner interface{ Scan(...interface{}) error }) (models.ArtifactRow, error) {
	var row models.ArtifactRow
	var parentID, childIndex sql.NullInt64
	var releaseDate, description sql.NullString

	err := scanner.Scan(
		&row.ID,
		&row.Title,
		&row.Kind,
		&parentID,
		&childIndex,
		&row.Duration,
		&releaseDate,
		&description,
	)
	if err != nil {
		return row, err
	}

	if parentID.Valid {
		id := parentID.Int64
		row.ParentID = &id
	}
	if childIndex.Valid {
		idx := int(childIndex.Int64)
		row.ChildIndex = &idx
	}
	row.ReleaseDate = releaseDate.String
	row.Description = description.String
	return row, nil
}

// GetTree loads an artifact and its full descendant tree, hydrated
// with genres, tags, links, ratings and the user's states. Returns
// (nil, nil) when the artifact does not exist.
func (r *Repository) GetTree(artifactID int64, userID string) (*Node, error) {
	rows, err := r.collectRows(artifactID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	tree := BuildTree(rows)
	if tree == nil {
		return nil, nil
	}

	ids := tree.CollectIDs()
	if err := r.hydrateNode(tree); err != nil {
		return nil, err
	}

	if userID != "" {
		states, err := r.userStates(userID, ids)
		if err != nil {
			return nil, err
		}
		tree.ApplyUserStates(states)
	}
	return tree, nil
}

// collectRows walks the stored tree breadth-first, returning the flat
// rows in an order BuildTree accepts (parents before children,
// siblings by child index).
func (r *Repository) collectRows(rootID int64) ([]models.ArtifactRow, error) {
	row := r.db.QueryRow(`SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, rootID)
	root, err := scanArtifactRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	// The root is detached from any stored parent so BuildTree treats
	// it as the top of this subtree.
	root.ParentID = nil

	collected := []models.ArtifactRow{root}
	frontier := []int64{root.ID}

	for len(frontier) > 0 {
		parentID := frontier[0]
		frontier = frontier[1:]

		rows, err := r.db.Query(
			`SELECT `+artifactColumns+` FROM artifacts WHERE parent_id = ? ORDER BY child_index, id`,
			parentID,
		)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			child, err := scanArtifactRow(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			collected = append(collected, child)
			frontier = append(frontier, child.ID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return collected, nil
}

func (r *Repository) hydrateNode(n *Node) error {
	var err error
	if n.Genres, err = r.stringList(`SELECT genre FROM artifact_genres WHERE artifact_id = ? ORDER BY genre`, n.ID); err != nil {
		return err
	}
	if n.Tags, err = r.stringList(`SELECT tag FROM artifact_tags WHERE artifact_id = ? ORDER BY tag`, n.ID); err != nil {
		return err
	}

	rows, err := r.db.Query(`SELECT name, url FROM artifact_links WHERE artifact_id = ? ORDER BY name`, n.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(&link.Name, &link.URL); err != nil {
			rows.Close()
			return err
		}
		n.Links = append(n.Links, link)
	}
	rows.Close()

	rows, err = r.db.Query(`SELECT source, value FROM artifact_ratings WHERE artifact_id = ? ORDER BY source`, n.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.Source, &rating.Value); err != nil {
			rows.Close()
			return err
		}
		n.Ratings = append(n.Ratings, rating)
	}
	rows.Close()

	for _, c := range n.Children {
		if err := r.hydrateNode(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) stringList(query string, artifactID int64) ([]string, error) {
	rows, err := r.db.Query(query, artifactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// userStates fetches one user's state rows for a set of artifact ids,
// keyed by artifact id.
func (r *Repository) userStates(userID string, artifactIDs []int64) (map[int64]*models.UserState, error) {
	if len(artifactIDs) == 0 {
		return map[int64]*models.UserState{}, nil
	}

	placeholders := strings.Repeat("?,", len(artifactIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, 0, len(artifactIDs)+1)
	args = append(args, userID)
	for _, id := range artifactIDs {
		args = append(args, id)
	}

	rows, err := r.db.Query(
		`SELECT user_id, artifact_id, status, score, start_date, end_date, updated_at
         FROM user_states WHERE user_id = ? AND artifact_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[int64]*models.UserState)
	for rows.Next() {
		st, err := scanUserState(rows)
		if err != nil {
			return nil, err
		}
		states[st.ArtifactID] = st
	}
	return states, rows.Err()
}

func scanUserState(scanner interface{ Scan(...interface{}) error }) (*models.UserState, error) {
	var st models.UserState
	var status sql.NullString
	var score sql.NullFloat64
	var start, end sql.NullTime

	err := scanner.Scan(&st.UserID, &st.ArtifactID, &status, &score, &start, &end, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if status.Valid {
		s := models.UserStatus(status.String)
		st.Status = &s
	}
	if score.Valid {
		v := score.Float64
		st.Score = &v
	}
	if start.Valid {
		t := start.Time
		st.StartDate = &t
	}
	if end.Valid {
		t := end.Time
		st.EndDate = &t
	}
	return &st, nil
}

// GetUserState returns one user's state for one artifact, or nil.
func (r *Repository) GetUserState(userID string, artifactID int64) (*models.UserState, error) {
	row := r.db.QueryRow(
		`SELECT user_id, artifact_id, status, score, start_date, end_date, updated_at
         FROM user_states WHERE user_id = ? AND artifact_id = ?`,
		userID, artifactID,
	)
	st, err := scanUserState(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return st, nil
}

// Search pages through top-level artifacts of one kind, optionally
// filtered by a title substring.
func (r *Repository) Search(req models.SearchArtifactRequest) ([]models.ArtifactRow, int, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	where := ` WHERE parent_id IS NULL AND kind = ?`
	args := []interface{}{req.Kind}
	if req.Q != "" {
		where += ` AND title LIKE ?`
		args = append(args, "%"+req.Q+"%")
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM artifacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + artifactColumns + ` FROM artifacts` + where + ` ORDER BY title LIMIT ? OFFSET ?`
	args = append(args, req.PageSize, (req.Page-1)*req.PageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []models.ArtifactRow
	for rows.Next() {
		row, err := scanArtifactRow(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, row)
	}
	return results, total, rows.Err()
}

// Create inserts an artifact and, recursively, any nested children in
// a single transaction. Child indexes are assigned from list order,
// 1-based.
func (r *Repository) Create(req models.CreateArtifactRequest) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := insertArtifact(tx, req, nil, nil)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func insertArtifact(tx *sql.Tx, req models.CreateArtifactRequest, parentID *int64, childIndex *int) (int64, error) {
	release, err := releaseToStorage(req.ReleaseDate)
	if err != nil {
		return 0, err
	}

	res, err := tx.Exec(
		`INSERT INTO artifacts (title, kind, parent_id, child_index, duration, release_date, description)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.Title, req.Kind, parentID, childIndex, req.Duration, release, req.Description,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, genre := range req.Genres {
		if _, err := tx.Exec(`INSERT INTO artifact_genres (artifact_id, genre) VALUES (?, ?)`, id, genre); err != nil {
			return 0, err
		}
	}
	for _, tag := range req.Tags {
		if _, err := tx.Exec(`INSERT INTO artifact_tags (artifact_id, tag) VALUES (?, ?)`, id, tag); err != nil {
			return 0, err
		}
	}
	for _, link := range req.Links {
		if _, err := tx.Exec(`INSERT INTO artifact_links (artifact_id, name, url) VALUES (?, ?, ?)`, id, link.Name, link.URL); err != nil {
			return 0, err
		}
	}
	for _, rating := range req.Ratings {
		if _, err := tx.Exec(`INSERT INTO artifact_ratings (artifact_id, source, value) VALUES (?, ?, ?)`, id, rating.Source, rating.Value); err != nil {
			return 0, err
		}
	}

	for i, child := range req.Children {
		idx := i + 1
		if _, err := insertArtifact(tx, child, &id, &idx); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// releaseToStorage accepts an epoch-millisecond string, an RFC 3339
// timestamp or a plain date and normalizes to the stored epoch-ms
// string.
func releaseToStorage(input string) (string, error) {
	if input == "" {
		return "", nil
	}
	if ms, err := strconv.ParseInt(input, 10, 64); err == nil {
		return strconv.FormatInt(ms, 10), nil
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return strconv.FormatInt(t.UnixMilli(), 10), nil
	}
	if t, err := time.Parse("2006-01-02", input); err == nil {
		return strconv.FormatInt(t.UnixMilli(), 10), nil
	}
	return "", fmt.Errorf("unrecognized release date %q", input)
}

// Delete removes an artifact, all its descendants and every row
// referencing any of them, in one transaction. Returns the removed
// ids. The id list is produced by the tree's own collector so deletion
// and tree semantics can never disagree.
func (r *Repository) Delete(artifactID int64) ([]int64, error) {
	tree, err := r.GetTree(artifactID, "")
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}
	ids := tree.CollectIDs()

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	referencing := []string{
		`DELETE FROM backlog_entries WHERE artifact_id IN (` + placeholders + `)`,
		`DELETE FROM wishlist_rankings WHERE artifact_id IN (` + placeholders + `)`,
		`DELETE FROM user_states WHERE artifact_id IN (` + placeholders + `)`,
		`DELETE FROM artifact_ratings WHERE artifact_id IN (` + placeholders + `)`,
		`DELETE FROM artifact_links WHERE artifact_id IN (` + placeholders + `)`,
		`DELETE FROM artifact_genres WHERE artifact_id IN (` + placeholders + `)`,
		`DELETE FROM artifact_tags WHERE artifact_id IN (` + placeholders + `)`,
	}
	for _, q := range referencing {
		if _, err := tx.Exec(q, args...); err != nil {
			return nil, err
		}
	}

	// Children before parents to satisfy the parent_id reference.
	for i := len(ids) - 1; i >= 0; i-- {
		if _, err := tx.Exec(`DELETE FROM artifacts WHERE id = ?`, ids[i]); err != nil {
			return nil, err
		}
	}

	return ids, tx.Commit()
}

// UpdateUserState applies status/score/date edits to an artifact for
// one user, creating state rows lazily. A finished status cascades to
// every descendant; other statuses touch only the artifact itself.
// Returns nil when the artifact does not exist.
func (r *Repository) UpdateUserState(userID string, req models.UpdateUserStateRequest) (*models.UserState, error) {
	tree, err := r.GetTree(req.ArtifactID, userID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, nil
	}

	if req.Status != "" {
		tree.SetStatus(userID, models.UserStatus(req.Status))
	}
	if req.Score != nil {
		tree.SetScore(userID, *req.Score)
	}
	if req.StartDate != nil {
		t, err := time.Parse(time.RFC3339, *req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
		tree.SetStartDate(userID, t)
	}
	if req.EndDate != nil {
		t, err := time.Parse(time.RFC3339, *req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		tree.SetEndDate(userID, t)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := persistStates(tx, tree); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tree.State, nil
}

func persistStates(tx *sql.Tx, n *Node) error {
	if n.State != nil {
		st := n.State
		var status interface{}
		if st.Status != nil {
			status = string(*st.Status)
		}
		_, err := tx.Exec(
			`INSERT INTO user_states (user_id, artifact_id, status, score, start_date, end_date, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(user_id, artifact_id) DO UPDATE SET
                 status = excluded.status,
                 score = excluded.score,
                 start_date = excluded.start_date,
                 end_date = excluded.end_date,
                 updated_at = excluded.updated_at`,
			st.UserID, st.ArtifactID, status, st.Score, st.StartDate, st.EndDate, time.Now().UTC(),
		)
		if err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := persistStates(tx, c); err != nil {
			return err
		}
	}
	return nil
}
