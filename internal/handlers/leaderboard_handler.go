package handlers

import (
	"log"
	"net/http"

	"spelling-service/internal/leaderboard"
	"spelling-service/internal/repository"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	repo *repository.ResultRepository
}

func NewLeaderboardHandler(repo *repository.ResultRepository) *LeaderboardHandler {
	return &LeaderboardHandler{repo: repo}
}

// GetLeaderboard ranks every recorded result.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	results, err := h.repo.ListResults(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": leaderboard.Rank(results)})
}

func (h *LeaderboardHandler) GetClassLeaderboard(c *gin.Context) {
	classID := c.Param("classId")
	results, err := h.repo.ListResultsByClass(c.Request.Context(), classID)
	if err != nil {
		log.Printf("Failed to list results for class %s: %v", classID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"class_id":    classID,
		"leaderboard": leaderboard.Rank(results),
	})
}

func (h *LeaderboardHandler) GetSchoolLeaderboard(c *gin.Context) {
	schoolID := c.Param("schoolId")
	results, err := h.repo.ListResultsBySchool(c.Request.Context(), schoolID)
	if err != nil {
		log.Printf("Failed to list results for school %s: %v", schoolID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"school_id":   schoolID,
		"leaderboard": leaderboard.Rank(results),
	})
}
