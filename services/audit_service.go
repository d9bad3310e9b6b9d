package services

import (
	"context"
	"fmt"
	"time"

	"github.com/r56149203/EduSphere/model"
	"gorm.io/gorm"
)

// AuditPage is one page of the admin audit log
type AuditPage struct {
	Items    []model.AdminAuditLog
	Total    int64
	Page     int
	PageSize int
}

// AuditService reads and prunes the admin audit log
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// List returns audit entries newest first with the acting admin preloaded
func (s *AuditService) List(ctx context.Context, page, pageSize int) (*AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.AdminAuditLog{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	items := []model.AdminAuditLog{}
	err := s.db.WithContext(ctx).
		Preload("Admin").
		Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return &AuditPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// PurgeOlderThan deletes entries created before cutoff
func (s *AuditService) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.AdminAuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
