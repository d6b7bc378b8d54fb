package types

import "time"

// Teams own safes and the transaction history reconciled for them.
type Team struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	CreatedAt time.Time
	Members   []TeamMember `gorm:"foreignKey:TeamID"`
	Safes     []Safe       `gorm:"foreignKey:TeamID"`
}

// TeamMember joins a user to a team, carrying the wallet address the user
// signs with inside that team.
type TeamMember struct {
	TeamID        uint64 `gorm:"primaryKey"`
	UID           string `gorm:"primaryKey;size:128"`
	WalletAddress string `gorm:"size:64"`
	JoinedAt      time.Time
	Team          Team `gorm:"foreignKey:TeamID"`
}

// Safe registers an on-chain multisig wallet with a team. Removing one
// cascades to deletion of the wallet's reconciled transactions.
type Safe struct {
	ID          uint64 `gorm:"primaryKey"`
	TeamID      uint64 `gorm:"index;not null"`
	SafeAddress string `gorm:"size:64;not null"`
	NetworkID   uint8  `gorm:"index;not null"`
	Name        string `gorm:"size:128"`
	Owners      string `gorm:"type:text"` // comma-separated owner addresses
	Threshold   uint16 `gorm:"default:1"`
	AddedAt     time.Time
	Team        Team    `gorm:"foreignKey:TeamID"`
	Network     Network `gorm:"foreignKey:NetworkID"`
}

// Network maps a chain identifier to its multisig transaction service.
type Network struct {
	ID         uint8  `gorm:"primaryKey"`
	Name       string `gorm:"size:32;unique;not null"`
	ServiceURL string `gorm:"size:256;not null"`
	Active     bool   `gorm:"default:true"`
}

// Settings table
type Setting struct {
	ID     uint16 `gorm:"primaryKey"`
	Name   string `gorm:"size:32;unique;not null"`
	Value  string `gorm:"size:256"`
	Active uint8  `gorm:"default:1"`
}
