package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satoshisafe/safesync/src/docstore"
	"github.com/satoshisafe/safesync/src/reconcile"
	"gorm.io/gorm"
)

type Feed struct {
	db   *gorm.DB
	docs *docstore.DataBase
}

func NewFeed(db *gorm.DB, docs *docstore.DataBase) Feed {
	return Feed{db: db, docs: docs}
}

// Get returns the team's combined chat/transaction timeline, superseded
// transactions filtered out, ascending by time.
func (f Feed) Get(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if !requireMember(c, f.db, teamID) {
		return
	}

	ctx := c.Request.Context()
	msgs, err := f.docs.ListMessages(ctx, int64(teamID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load messages"})
		return
	}
	txs, err := f.docs.ListTransactions(ctx, int64(teamID), "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": reconcile.ComposeFeed(msgs, txs)})
}
