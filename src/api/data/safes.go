package data

import (
	"github.com/satoshisafe/safesync/src/api/types"
	"github.com/satoshisafe/safesync/src/reconcile"
	"github.com/satoshisafe/safesync/src/safeclient"
	"gorm.io/gorm"
)

// ListRegisteredSafes loads every team-registered wallet for a
// reconciliation cycle.
func ListRegisteredSafes(db *gorm.DB) ([]reconcile.RegisteredSafe, error) {
	var safes []types.Safe
	if err := db.Preload("Network").Find(&safes).Error; err != nil {
		return nil, err
	}
	out := make([]reconcile.RegisteredSafe, 0, len(safes))
	for _, s := range safes {
		if !s.Network.Active {
			continue
		}
		out = append(out, reconcile.RegisteredSafe{
			TeamID:  int64(s.TeamID),
			Network: s.Network.Name,
			Address: s.SafeAddress,
		})
	}
	return out, nil
}

// LoadNetworks binds every active network's transaction service into the
// client registry.
func LoadNetworks(db *gorm.DB, reg *safeclient.Registry) error {
	var networks []types.Network
	if err := db.Where("active = ?", true).Find(&networks).Error; err != nil {
		return err
	}
	for _, n := range networks {
		reg.Register(n.Name, n.ServiceURL)
	}
	return nil
}
