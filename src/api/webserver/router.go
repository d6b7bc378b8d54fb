package webserver

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/satoshisafe/safesync/src/api/config"
	"github.com/satoshisafe/safesync/src/api/data"
	"github.com/satoshisafe/safesync/src/api/middleware"
	"github.com/satoshisafe/safesync/src/docstore"
	"github.com/satoshisafe/safesync/src/reconcile"
	"github.com/satoshisafe/safesync/src/scheduler"
	"gorm.io/gorm"
)

func New(cfg config.Config, db *gorm.DB, docs *docstore.DataBase, rdb *redis.Client, engine *reconcile.Engine, sched *scheduler.Scheduler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), requestID())
	attachRoutes(r, cfg, db, docs, rdb, engine, sched)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, docs *docstore.DataBase, rdb *redis.Client, engine *reconcile.Engine, sched *scheduler.Scheduler) {
	// Allowed origins are operator-tunable through the settings table.
	origins := strings.Split(
		data.GetSettingDefault("cors_origins", "http://localhost:3000,https://app.satoshisafe.ai"), ",")

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	txH := NewTransactions(db, docs, rdb, engine)
	msgH := NewMessages(db, docs, rdb)
	safeH := NewSafes(db, docs)
	feedH := NewFeed(db, docs)
	actH := NewActivity(sched)

	v1 := r.Group("/v1")
	secured := v1.Use(middleware.JWT([]byte(cfg.JWTSecret)))
	{
		secured.POST("/transactions", txH.Ingest)
		secured.GET("/transactions", txH.List)
		secured.DELETE("/transactions", txH.Delete)

		secured.POST("/messages", msgH.Create)
		secured.GET("/messages", msgH.List)
		secured.DELETE("/messages/:id", msgH.Delete)

		secured.POST("/teams", safeH.CreateTeam)
		secured.POST("/safes", safeH.Add)
		secured.GET("/safes", safeH.List)
		secured.DELETE("/safes", safeH.Remove)

		secured.GET("/feed", feedH.Get)
		secured.POST("/activity", actH.Report)
	}
}

// requestID tags every request for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("reqid", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
