package artifact

import "github.com/tralvick/backloghub/pkg/models"

// Progress is the last finished child and the next unfinished one in a
// linear child sequence.
type Progress struct {
	Last *Node
	Next *Node
}

// LastAndNext walks the ordered children and reports consumption
// progress. The first child that is not finished becomes next and
// blocks progress: a later finished child never counts as "last" while
// an earlier one is open. With every child finished, last is the final
// child and next is nil. Only show, season and anime kinds carry a
// child sequence; every other kind returns ErrUnsupportedOperation.
func (n *Node) LastAndNext() (Progress, error) {
	if !n.Kind.IsContainer() {
		return Progress{}, ErrUnsupportedOperation
	}

	var last *Node
	for _, child := range n.Children {
		if !child.finished() {
			return Progress{Last: last, Next: child}, nil
		}
		last = child
	}
	return Progress{Last: last, Next: nil}, nil
}

func (n *Node) finished() bool {
	return n.State != nil && n.State.Status != nil && *n.State.Status == models.StatusFinished
}
