package artifact

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tralvick/backloghub/internal/notify"
	"github.com/tralvick/backloghub/pkg/models"
)

// Handler handles artifact-related operations
type Handler struct {
	repo *Repository
	hub  *notify.Hub
}

// NewHandler creates a new artifact handler
func NewHandler(repo *Repository, hub *notify.Hub) *Handler {
	return &Handler{repo: repo, hub: hub}
}

// SearchArtifacts pages through top-level artifacts of one kind.
func (h *Handler) SearchArtifacts(c *gin.Context) {
	var req models.SearchArtifactRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ArtifactKind(req.Kind).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact kind"})
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	rows, total, err := h.repo.Search(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	totalPages := (total + req.PageSize - 1) / req.PageSize
	c.JSON(http.StatusOK, gin.H{
		"artifacts": rows,
		"pagination": models.PaginationMeta{
			Page:       req.Page,
			PageSize:   req.PageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	})
}

// GetArtifactByID returns the fully hydrated tree for one artifact,
// with per-node mean rating and progress computed for the caller.
func (h *Handler) GetArtifactByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artifact ID"})
		return
	}
	userID := c.GetString("user_id")

	tree, err := h.repo.GetTree(id, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if tree == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found"})
		return
	}

	tree.Decorate()
	c.JSON(http.StatusOK, tree)
}

// CreateArtifact creates an artifact, optionally with a nested child
// tree in a single request.
func (h *Handler) CreateArtifact(c *gin.Context) {
	var req models.CreateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateKinds(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.repo.Create(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create artifact"})
		return
	}

	tree, err := h.repo.GetTree(id, "")
	if err != nil || tree == nil {
		c.JSON(http.StatusCreated, gin.H{"id": id})
		return
	}
	tree.Decorate()
	c.JSON(http.StatusCreated, tree)
}

func validateKinds(req models.CreateArtifactRequest) error {
	if !models.ArtifactKind(req.Kind).Valid() {
		return &kindError{kind: req.Kind}
	}
	for _, child := range req.Children {
		if err := validateKinds(child); err != nil {
			return err
		}
	}
	return nil
}

type kindError struct{ kind string }

func (e *kindError) Error() string { return "unknown artifact kind: " + e.kind }

// DeleteArtifact removes an artifact, its descendants and every
// referencing row in one transaction.
func (h *Handler) DeleteArtifact(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artifact ID"})
		return
	}

	ids, err := h.repo.Delete(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete artifact"})
		return
	}
	if ids == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found"})
		return
	}

	h.hub.NotifyArtifactDeleted(c.GetString("user_id"), map[string]interface{}{
		"artifact_id": id,
		"deleted_ids": ids,
	})

	c.JSON(http.StatusOK, gin.H{"deleted_ids": ids})
}

// UpdateUserState applies status/score/date edits for the current
// user. Finishing a container cascades to its whole subtree.
func (h *Handler) UpdateUserState(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.UpdateUserStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.repo.UpdateUserState(userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if state == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found"})
		return
	}

	h.hub.NotifyProgressUpdate(userID, map[string]interface{}{
		"artifact_id": req.ArtifactID,
		"status":      req.Status,
	})

	c.JSON(http.StatusOK, state)
}

// GetUserState returns the current user's state for one artifact.
func (h *Handler) GetUserState(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	artifactID, err := strconv.ParseInt(c.Param("artifact_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artifact ID"})
		return
	}

	state, err := h.repo.GetUserState(userID, artifactID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if state == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No state for this artifact"})
		return
	}

	c.JSON(http.StatusOK, state)
}
