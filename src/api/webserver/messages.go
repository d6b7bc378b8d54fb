package webserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/satoshisafe/safesync/src/api/data"
	"github.com/satoshisafe/safesync/src/docstore"
	"gorm.io/gorm"
)

const botMention = "@satoshibot"

// MessageStore is the slice of the document store the message handlers use.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg docstore.Message) (docstore.Message, error)
	ListMessages(ctx context.Context, teamID int64) ([]docstore.Message, error)
	DeleteMessage(ctx context.Context, id, uid string) error
}

type Messages struct {
	db     *gorm.DB
	docs   MessageStore
	rdb    *redis.Client
	policy *bluemonday.Policy
}

func NewMessages(db *gorm.DB, docs MessageStore, rdb *redis.Client) Messages {
	return Messages{db: db, docs: docs, rdb: rdb, policy: bluemonday.StrictPolicy()}
}

func (m Messages) Create(c *gin.Context) {
	var req struct {
		TeamID  uint64 `json:"teamid" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed body: teamid and message are required"})
		return
	}
	if !requireMember(c, m.db, req.TeamID) {
		return
	}

	body := strings.TrimSpace(m.policy.Sanitize(req.Message))
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "empty message"})
		return
	}

	msg, err := m.docs.InsertMessage(c.Request.Context(), docstore.Message{
		TeamID:  int64(req.TeamID),
		UID:     c.GetString("uid"),
		Type:    docstore.MessageTypeText,
		Message: body,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to store message"})
		return
	}

	if strings.HasPrefix(body, botMention) {
		m.replyAsBot(c.Request.Context(), int64(req.TeamID), body)
	}

	_ = data.PublishFeedEvent(c.Request.Context(), m.rdb, map[string]interface{}{
		"team": req.TeamID,
		"kind": "message",
		"id":   msg.ID.Hex(),
		"time": time.Now().Unix(),
	})

	c.JSON(http.StatusCreated, gin.H{"id": msg.ID.Hex(), "createdAt": msg.CreatedAt})
}

func (m Messages) List(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if !requireMember(c, m.db, teamID) {
		return
	}

	msgs, err := m.docs.ListMessages(c.Request.Context(), int64(teamID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (m Messages) Delete(c *gin.Context) {
	err := m.docs.DeleteMessage(c.Request.Context(), c.Param("id"), c.GetString("uid"))
	switch {
	case errors.Is(err, docstore.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "message not found"})
	case errors.Is(err, docstore.ErrNotAuthor):
		c.JSON(http.StatusForbidden, gin.H{"message": "only the author can delete a message"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete message"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	}
}

// replyAsBot stores the bot's answer to a mention. The user's own message is
// already stored, so a failed reply is logged rather than failing the request.
func (m Messages) replyAsBot(ctx context.Context, teamID int64, body string) {
	reply := botReply(strings.TrimSpace(strings.TrimPrefix(body, botMention)))
	_, err := m.docs.InsertMessage(ctx, docstore.Message{
		TeamID:  teamID,
		UID:     "satoshibot",
		Type:    docstore.MessageTypeBot,
		Message: reply,
	})
	if err != nil {
		log.Printf("messages: bot reply for team %d: %v", teamID, err)
	}
}

func botReply(command string) string {
	switch {
	case command == "" || command == "help":
		return "Available commands: help, balance, pending. Ask me with @satoshibot <command>."
	case command == "pending":
		return "Pending transactions appear in the feed once reconciliation catches up."
	default:
		return "I did not understand that. Try @satoshibot help."
	}
}
