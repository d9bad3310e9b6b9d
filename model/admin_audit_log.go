package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog represents audit trail for admin actions
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	AdminID     uint           `gorm:"not null;index" json:"admin_id"`
	Action      string         `gorm:"type:varchar(100);not null" json:"action"` // e.g. "resource_delete", "user_role_update"
	Resource    string         `gorm:"type:varchar(100)" json:"resource"`        // e.g. "resources", "users"
	ResourceID  uint           `json:"resource_id"`
	OldValue    datatypes.JSON `json:"old_value"`
	NewValue    datatypes.JSON `json:"new_value"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string         `gorm:"type:text" json:"user_agent"`
	Description string         `gorm:"type:text" json:"description"`
	StatusCode  int            `json:"status_code"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`

	// Relationships
	Admin User `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
