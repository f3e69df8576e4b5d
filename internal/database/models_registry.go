package database

import "lifewood/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []any {
	return []any{
		&models.Applicant{},
		&models.Admin{},
	}
}
