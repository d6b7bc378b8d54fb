package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/satoshisafe/safesync/src/api/types"
	"gorm.io/gorm"
)

// TransactionPurger removes a wallet's reconciled documents. Satisfied by the
// document store.
type TransactionPurger interface {
	DeleteSafeTransactions(ctx context.Context, teamID int64, safe string) (int64, error)
}

type Safes struct {
	db   *gorm.DB
	docs TransactionPurger
}

func NewSafes(db *gorm.DB, docs TransactionPurger) Safes {
	return Safes{db: db, docs: docs}
}

func (s Safes) CreateTeam(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		WalletAddress string `json:"walletAddress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed body: name is required"})
		return
	}

	team := types.Team{Name: req.Name, CreatedAt: time.Now()}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		return tx.Create(&types.TeamMember{
			TeamID:        team.ID,
			UID:           c.GetString("uid"),
			WalletAddress: req.WalletAddress,
			JoinedAt:      time.Now(),
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create team"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": team.ID})
}

func (s Safes) Add(c *gin.Context) {
	var req struct {
		TeamID      uint64   `json:"teamid" binding:"required"`
		SafeAddress string   `json:"safeAddress" binding:"required"`
		Network     string   `json:"network" binding:"required"`
		Name        string   `json:"name"`
		Owners      []string `json:"owners"`
		Threshold   uint16   `json:"threshold"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed body: teamid, safeAddress and network are required"})
		return
	}
	if !common.IsHexAddress(req.SafeAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "safeAddress is not a valid address"})
		return
	}
	if !requireMember(c, s.db, req.TeamID) {
		return
	}

	var network types.Network
	if err := s.db.First(&network, "name = ? AND active = ?", req.Network, true).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown network"})
		return
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = 1
	}
	safe := types.Safe{
		TeamID:      req.TeamID,
		SafeAddress: req.SafeAddress,
		NetworkID:   network.ID,
		Name:        req.Name,
		Owners:      strings.Join(req.Owners, ","),
		Threshold:   threshold,
		AddedAt:     time.Now(),
	}
	if err := s.db.Create(&safe).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to register safe"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": safe.ID})
}

func (s Safes) List(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	if !requireMember(c, s.db, teamID) {
		return
	}

	var safes []types.Safe
	if err := s.db.Preload("Network").Where("team_id = ?", teamID).Find(&safes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list safes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"safes": safes})
}

// Remove unregisters a wallet from the team and cascades to deletion of its
// reconciled transaction history. Documents go first: if the document purge
// fails the registration stays in place, so a retry finishes the cleanup
// instead of leaving orphaned documents behind a dropped registration.
func (s Safes) Remove(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	addr := c.Query("safe")
	if addr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing safe"})
		return
	}
	if !requireMember(c, s.db, teamID) {
		return
	}

	var safe types.Safe
	err := s.db.First(&safe, "team_id = ? AND safe_address = ?", teamID, addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "safe not registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load safe"})
		return
	}
	deleted, err := s.unregister(c.Request.Context(), safe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to remove safe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK", "deleted": deleted})
}

// unregister purges the wallet's documents, then drops the registration row.
// A failed purge leaves the registration in place so a retried delete can
// finish the cleanup.
func (s Safes) unregister(ctx context.Context, safe types.Safe) (int64, error) {
	deleted, err := s.docs.DeleteSafeTransactions(ctx, int64(safe.TeamID), safe.SafeAddress)
	if err != nil {
		return 0, fmt.Errorf("purge transactions: %w", err)
	}
	if err := s.db.Delete(&safe).Error; err != nil {
		return deleted, fmt.Errorf("drop registration: %w", err)
	}
	return deleted, nil
}
