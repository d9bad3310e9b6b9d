package model

// All returns every model managed by AutoMigrate, parents before children
func All() []interface{} {
	return []interface{}{
		&User{},
		&Class{},
		&Subject{},
		&Chapter{},
		&Resource{},
		&JWTTokenBlacklist{},
		&AdminAuditLog{},
		&CronJobLog{},
	}
}
