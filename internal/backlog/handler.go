package backlog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tralvick/backloghub/internal/notify"
	"github.com/tralvick/backloghub/internal/ranking"
	"github.com/tralvick/backloghub/pkg/metrics"
	"github.com/tralvick/backloghub/pkg/models"
)

// Handler serves the stored backlog endpoints plus the computed
// wishlist and upcoming views.
type Handler struct {
	repo     *Repository
	resolver *Resolver
	hub      *notify.Hub
}

func NewHandler(repo *Repository, resolver *Resolver, hub *notify.Hub) *Handler {
	return &Handler{repo: repo, resolver: resolver, hub: hub}
}

func (h *Handler) CreateBacklog(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CreateBacklogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ArtifactKind(req.Kind).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact kind"})
		return
	}

	backlog, err := h.repo.CreateBacklog(userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create backlog"})
		return
	}
	c.JSON(http.StatusCreated, backlog)
}

func (h *Handler) ListBacklogs(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	backlogs, err := h.repo.ListBacklogs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backlogs": backlogs, "count": len(backlogs)})
}

func (h *Handler) DeleteBacklog(c *gin.Context) {
	backlog, ok := h.ownedBacklog(c)
	if !ok {
		return
	}

	deleted, err := h.repo.DeleteBacklog(backlog.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete backlog"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Backlog not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Backlog deleted"})
}

// GetEntries returns a backlog's entries ranked by the backlog's
// strategy; ?sort= reorders the annotated result without changing the
// computed positions.
func (h *Handler) GetEntries(c *gin.Context) {
	backlog, ok := h.ownedBacklog(c)
	if !ok {
		return
	}

	entries, err := h.repo.Entries(backlog.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries = ranking.Rank(entries, backlog.RankingType)

	if sort := c.Query("sort"); sort != "" {
		key := models.SortKey(sort)
		if !key.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key"})
			return
		}
		entries = ranking.SortBy(entries, key)
	}

	c.JSON(http.StatusOK, gin.H{
		"backlog": backlog,
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *Handler) AddEntry(c *gin.Context) {
	backlog, ok := h.ownedBacklog(c)
	if !ok {
		return
	}

	var req models.AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.repo.AddEntry(backlog.ID, req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add entry"})
		return
	}

	h.hub.NotifyBacklogUpdate(backlog.UserID, map[string]interface{}{
		"backlog_id":  backlog.ID,
		"artifact_id": req.ArtifactID,
		"action":      "added",
	})
	c.JSON(http.StatusCreated, gin.H{"message": "Entry added"})
}

func (h *Handler) RemoveEntry(c *gin.Context) {
	backlog, ok := h.ownedBacklog(c)
	if !ok {
		return
	}
	artifactID, err := strconv.ParseInt(c.Param("artifact_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid artifact ID"})
		return
	}

	removed, err := h.repo.RemoveEntry(backlog.ID, artifactID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove entry"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	h.hub.NotifyBacklogUpdate(backlog.UserID, map[string]interface{}{
		"backlog_id":  backlog.ID,
		"artifact_id": artifactID,
		"action":      "removed",
	})
	c.JSON(http.StatusOK, gin.H{"message": "Entry removed"})
}

func (h *Handler) SetRank(c *gin.Context) {
	backlog, ok := h.ownedBacklog(c)
	if !ok {
		return
	}

	var req models.SetRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.repo.SetRank(backlog.ID, req.ArtifactID, req.Rank)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set rank"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	h.hub.NotifyBacklogUpdate(backlog.UserID, map[string]interface{}{
		"backlog_id":  backlog.ID,
		"artifact_id": req.ArtifactID,
		"rank":        req.Rank,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Rank updated"})
}

func (h *Handler) Duel(c *gin.Context) {
	backlog, ok := h.ownedBacklog(c)
	if !ok {
		return
	}

	var req models.DuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WinnerID == req.LoserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winner and loser must differ"})
		return
	}

	winnerElo, loserElo, err := h.repo.Duel(backlog.ID, req.WinnerID, req.LoserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metrics.IncrementDuels()

	h.hub.NotifyBacklogUpdate(backlog.UserID, map[string]interface{}{
		"backlog_id": backlog.ID,
		"winner_id":  req.WinnerID,
		"loser_id":   req.LoserID,
	})
	c.JSON(http.StatusOK, gin.H{
		"winner_id":  req.WinnerID,
		"winner_elo": winnerElo,
		"loser_id":   req.LoserID,
		"loser_elo":  loserElo,
	})
}

// GetWishlist serves the computed view of released wishlist artifacts
// for one kind.
func (h *Handler) GetWishlist(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	kind := models.ArtifactKind(c.Query("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact kind"})
		return
	}

	sortKey := models.SortKey(c.Query("sort"))
	if sortKey != "" && !sortKey.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key"})
		return
	}

	entries, err := h.resolver.Wishlist(userID, kind, sortKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backlog_id": models.WishlistBacklogID,
		"kind":       kind,
		"entries":    entries,
		"count":      len(entries),
	})
}

// GetUpcoming serves the computed view of unreleased wishlist
// artifacts for one kind, soonest first.
func (h *Handler) GetUpcoming(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	kind := models.ArtifactKind(c.Query("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact kind"})
		return
	}

	entries, err := h.resolver.Upcoming(userID, kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"backlog_id": models.UpcomingBacklogID,
		"kind":       kind,
		"entries":    entries,
		"count":      len(entries),
	})
}

func (h *Handler) WishlistDuel(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.DuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WinnerID == req.LoserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winner and loser must differ"})
		return
	}

	winnerElo, loserElo, err := h.repo.WishlistDuel(userID, req.WinnerID, req.LoserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record duel"})
		return
	}
	metrics.IncrementDuels()

	h.hub.NotifyBacklogUpdate(userID, map[string]interface{}{
		"backlog_id": models.WishlistBacklogID,
		"winner_id":  req.WinnerID,
		"loser_id":   req.LoserID,
	})
	c.JSON(http.StatusOK, gin.H{
		"winner_id":  req.WinnerID,
		"winner_elo": winnerElo,
		"loser_id":   req.LoserID,
		"loser_elo":  loserElo,
	})
}

func (h *Handler) SetWishlistRank(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.SetRankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.repo.SetWishlistRank(userID, req.ArtifactID, req.Rank); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set rank"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rank updated"})
}

// ownedBacklog parses the :id param and checks the backlog belongs to
// the authenticated user. It writes the error response itself.
func (h *Handler) ownedBacklog(c *gin.Context) (*models.Backlog, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid backlog ID"})
		return nil, false
	}

	backlog, err := h.repo.GetBacklog(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if backlog == nil || backlog.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Backlog not found"})
		return nil, false
	}
	return backlog, true
}
