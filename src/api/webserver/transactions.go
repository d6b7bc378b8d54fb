package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/satoshisafe/safesync/src/api/data"
	"github.com/satoshisafe/safesync/src/docstore"
	"github.com/satoshisafe/safesync/src/reconcile"
	"gorm.io/gorm"
)

type Transactions struct {
	db     *gorm.DB
	docs   *docstore.DataBase
	rdb    *redis.Client
	engine *reconcile.Engine
}

func NewTransactions(db *gorm.DB, docs *docstore.DataBase, rdb *redis.Client, engine *reconcile.Engine) Transactions {
	return Transactions{db: db, docs: docs, rdb: rdb, engine: engine}
}

// Ingest upserts a batch of transactions pushed by the dashboard. The
// fetchMore flag tells the caller whether any of the batch was new or
// changed, i.e. whether it should fetch and push the next page.
func (t Transactions) Ingest(c *gin.Context) {
	var req struct {
		TeamID       uint64           `json:"teamid" binding:"required"`
		Transactions []map[string]any `json:"transactions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed body: teamid and transactions are required"})
		return
	}
	if !requireMember(c, t.db, req.TeamID) {
		return
	}

	fetchMore := false
	for _, tx := range req.Transactions {
		wrote, err := t.engine.Upsert(c.Request.Context(), int64(req.TeamID), tx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store transaction"})
			return
		}
		if wrote {
			fetchMore = true
		}
	}

	if fetchMore {
		_ = data.PublishFeedEvent(c.Request.Context(), t.rdb, map[string]interface{}{
			"team": req.TeamID,
			"kind": "transactions",
			"time": time.Now().Unix(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK", "fetchMore": fetchMore})
}

// List returns a team's stored transactions, optionally for one wallet.
// Raw storage view: superseded transactions are not filtered here.
func (t Transactions) List(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if !requireMember(c, t.db, teamID) {
		return
	}

	txs, err := t.docs.ListTransactions(c.Request.Context(), int64(teamID), c.Query("safe"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// Delete removes every transaction of one wallet within a team.
func (t Transactions) Delete(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	safe := c.Query("safe")
	if safe == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing safe"})
		return
	}
	if !requireMember(c, t.db, teamID) {
		return
	}

	deleted, err := t.docs.DeleteSafeTransactions(c.Request.Context(), int64(teamID), safe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "deleted": deleted})
}
