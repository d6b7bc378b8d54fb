package webserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/satoshisafe/safesync/src/api/types"
	"gorm.io/gorm"
)

// requireMember verifies the team exists and the caller belongs to it. On
// failure it writes the error response and returns false.
func requireMember(c *gin.Context, db *gorm.DB, teamID uint64) bool {
	var team types.Team
	if err := db.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "team not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load team"})
		return false
	}
	var member types.TeamMember
	err := db.First(&member, "team_id = ? AND uid = ?", teamID, c.GetString("uid")).Error
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "not a member of this team"})
		return false
	}
	return true
}

// teamIDParam parses the teamid query parameter. On failure it writes a 400
// and returns false.
func teamIDParam(c *gin.Context) (uint64, bool) {
	raw := c.Query("teamid")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing teamid"})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad teamid"})
		return 0, false
	}
	return id, true
}
