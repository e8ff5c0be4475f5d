package artifact

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tralvick/backloghub/pkg/models"
)

// Node is one artifact in the composite tree. A node owns its children
// outright; the parent relation is never stored, only consulted while
// building (for display codes), keeping the tree acyclic and directly
// serializable.
type Node struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Kind        models.ArtifactKind `json:"kind"`
	ReleaseDate time.Time           `json:"release_date"`
	Duration    int64               `json:"duration"`
	ChildIndex  *int                `json:"child_index,omitempty"`
	Code        string              `json:"code,omitempty"`
	Description string              `json:"description,omitempty"`
	Genres      []string            `json:"genres,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Links       []models.Link       `json:"links,omitempty"`
	Ratings     []models.Rating     `json:"ratings,omitempty"`
	State       *models.UserState   `json:"user_state,omitempty"`
	Children    []*Node             `json:"children,omitempty"`

	// Computed once per request by Decorate, never cached across requests.
	MeanRating *float64      `json:"mean_rating,omitempty"`
	Progress   *ProgressView `json:"progress,omitempty"`
}

// ProgressView is the id-level projection of LastAndNext used in API
// responses.
type ProgressView struct {
	LastID *int64 `json:"last_artifact_id"`
	NextID *int64 `json:"next_artifact_id"`
}

// BuildTree assembles flat storage rows into a node tree. Child order
// follows row order; the root is the single row whose parent is absent
// from the set. Returns nil if rows is empty or contains no root.
func BuildTree(rows []models.ArtifactRow) *Node {
	if len(rows) == 0 {
		return nil
	}

	byID := make(map[int64]*Node, len(rows))
	for _, r := range rows {
		byID[r.ID] = &Node{
			ID:          r.ID,
			Title:       r.Title,
			Kind:        r.Kind,
			ReleaseDate: parseEpochMillis(r.ReleaseDate),
			Duration:    r.Duration,
			ChildIndex:  r.ChildIndex,
			Description: r.Description,
		}
	}

	var root *Node
	for _, r := range rows {
		node := byID[r.ID]
		if r.ParentID == nil {
			if root == nil {
				root = node
			}
			continue
		}
		parent, ok := byID[*r.ParentID]
		if !ok {
			if root == nil {
				root = node
			}
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	if root != nil {
		assignCodes(root, nil)
	}
	return root
}

// Flatten serializes the tree back to depth-first storage rows.
func (n *Node) Flatten() []models.ArtifactRow {
	var rows []models.ArtifactRow
	n.flattenInto(nil, &rows)
	return rows
}

func (n *Node) flattenInto(parentID *int64, rows *[]models.ArtifactRow) {
	*rows = append(*rows, models.ArtifactRow{
		ID:          n.ID,
		Title:       n.Title,
		Kind:        n.Kind,
		ParentID:    parentID,
		ChildIndex:  n.ChildIndex,
		Duration:    n.Duration,
		ReleaseDate: formatEpochMillis(n.ReleaseDate),
		Description: n.Description,
	})
	id := n.ID
	for _, c := range n.Children {
		c.flattenInto(&id, rows)
	}
}

// Decorate computes mean rating and progress for this node and every
// descendant, storing them as plain response fields. Idempotent.
func (n *Node) Decorate() {
	n.MeanRating = MeanRating(n.Kind, n.Ratings)
	if p, err := n.LastAndNext(); err == nil {
		view := &ProgressView{}
		if p.Last != nil {
			id := p.Last.ID
			view.LastID = &id
		}
		if p.Next != nil {
			id := p.Next.ID
			view.NextID = &id
		}
		n.Progress = view
	}
	for _, c := range n.Children {
		c.Decorate()
	}
}

// assignCodes derives display numbering from tree position: a season is
// S<idx>, an episode E<idx>, prefixed by the owning season's number.
// A nil child index yields no code.
func assignCodes(n *Node, parent *Node) {
	n.Code = displayCode(n, parent)
	for _, c := range n.Children {
		assignCodes(c, n)
	}
}

func displayCode(n *Node, parent *Node) string {
	if n.ChildIndex == nil {
		return ""
	}
	switch n.Kind {
	case models.KindTVShowSeason:
		return fmt.Sprintf("S%02d", *n.ChildIndex)
	case models.KindTVShowEpisode, models.KindAnimeEpisode:
		code := fmt.Sprintf("E%02d", *n.ChildIndex)
		if parent != nil && parent.Kind == models.KindTVShowSeason && parent.ChildIndex != nil {
			code = fmt.Sprintf("S%02d", *parent.ChildIndex) + code
		}
		return code
	}
	return ""
}

// parseEpochMillis reads the storage representation of a release date
// (integer epoch-millisecond string). Empty or malformed input yields
// the zero time.
func parseEpochMillis(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func formatEpochMillis(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
