package database

import "murmur/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserInfo{},
		&models.Device{},
		&models.Tag{},
		&models.Group{},
		&models.GroupMember{},
		&models.Notice{},
		&models.Follow{},
		&models.Block{},
	}
}
