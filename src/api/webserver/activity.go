package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/satoshisafe/safesync/src/scheduler"
)

type Activity struct {
	sched *scheduler.Scheduler
}

func NewActivity(sched *scheduler.Scheduler) Activity {
	return Activity{sched: sched}
}

// Report feeds client visibility/input signals into the reconciliation
// scheduler. Clients post on tab visibility changes and periodically while
// the user is interacting.
func (a Activity) Report(c *gin.Context) {
	var req struct {
		Visible *bool `json:"visible"`
		Input   bool  `json:"input"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed body"})
		return
	}
	if req.Visible == nil && !req.Input {
		c.JSON(http.StatusBadRequest, gin.H{"message": "empty activity event"})
		return
	}
	a.sched.Notify(scheduler.Event{Visible: req.Visible, Input: req.Input})
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
