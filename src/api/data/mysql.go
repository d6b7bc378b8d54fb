package data

import (
	"log"

	"github.com/satoshisafe/safesync/src/api/types"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

// Migrate keeps the relational registry schema current.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Team{},
		&types.TeamMember{},
		&types.Safe{},
		&types.Network{},
		&types.Setting{},
	)
}
