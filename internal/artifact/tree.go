package artifact

import (
	"time"

	"github.com/tralvick/backloghub/pkg/models"
)

// CollectIDs returns the ids of this node and every descendant,
// depth-first. The deletion cascade is driven by this list.
func (n *Node) CollectIDs() []int64 {
	ids := []int64{n.ID}
	for _, c := range n.Children {
		ids = append(ids, c.CollectIDs()...)
	}
	return ids
}

// FindByID returns the first node with the given id in depth-first
// order, or nil.
func (n *Node) FindByID(id int64) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// ApplyUserStates replaces every node's user state from a lookup table
// keyed by artifact id. Nodes absent from the table end up with no
// state.
func (n *Node) ApplyUserStates(states map[int64]*models.UserState) {
	n.State = states[n.ID]
	for _, c := range n.Children {
		c.ApplyUserStates(states)
	}
}

// CopyUserStates copies user state from a same-shaped source tree,
// matching nodes by id. Trees whose root ids differ cannot be copies of
// one another and yield ErrShapeMismatch.
func (n *Node) CopyUserStates(src *Node) error {
	if n.ID != src.ID {
		return ErrShapeMismatch
	}
	states := make(map[int64]*models.UserState)
	src.collectStates(states)
	n.ApplyUserStates(states)
	return nil
}

func (n *Node) collectStates(into map[int64]*models.UserState) {
	if n.State != nil {
		into[n.ID] = n.State
	}
	for _, c := range n.Children {
		c.collectStates(into)
	}
}

// SetStatus updates this node's status, creating the state lazily.
// Finishing an artifact finishes everything under it; any other status
// touches only this node.
func (n *Node) SetStatus(userID string, status models.UserStatus) {
	s := status
	n.ensureState(userID).Status = &s
	if status != models.StatusFinished {
		return
	}
	for _, c := range n.Children {
		c.SetStatus(userID, status)
	}
}

// SetScore sets the user score, creating the state lazily with every
// other field null.
func (n *Node) SetScore(userID string, score float64) {
	s := score
	n.ensureState(userID).Score = &s
}

func (n *Node) SetStartDate(userID string, d time.Time) {
	t := d
	n.ensureState(userID).StartDate = &t
}

func (n *Node) SetEndDate(userID string, d time.Time) {
	t := d
	n.ensureState(userID).EndDate = &t
}

func (n *Node) ensureState(userID string) *models.UserState {
	if n.State == nil {
		n.State = &models.UserState{UserID: userID, ArtifactID: n.ID}
	}
	return n.State
}
