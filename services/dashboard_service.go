package services

import (
	"context"
	"fmt"

	"github.com/r56149203/EduSphere/model"
	"gorm.io/gorm"
)

// TypeCount is the number of resources of one type
type TypeCount struct {
	Type  model.ResourceType
	Label string
	Count int64
}

// DashboardStats is everything shown on the admin dashboard
type DashboardStats struct {
	Users           int64
	Teachers        int64
	Students        int64
	Classes         int64
	Subjects        int64
	Chapters        int64
	Resources       int64
	ResourcesByType []TypeCount
	RecentResources []model.ResourceListItem
	RecentUsers     []model.User
}

// DashboardService aggregates counts for the admin dashboard
type DashboardService struct {
	db        *gorm.DB
	resources *ResourceService
	users     *UserService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB, resources *ResourceService, users *UserService) *DashboardService {
	return &DashboardService{db: db, resources: resources, users: users}
}

// Stats collects the dashboard numbers and the five newest resources and users
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{}

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&model.User{}, "", nil, &stats.Users},
		{&model.User{}, "role = ?", []interface{}{model.RoleTeacher}, &stats.Teachers},
		{&model.User{}, "role = ?", []interface{}{model.RoleStudent}, &stats.Students},
		{&model.Class{}, "", nil, &stats.Classes},
		{&model.Subject{}, "", nil, &stats.Subjects},
		{&model.Chapter{}, "", nil, &stats.Chapters},
		{&model.Resource{}, "", nil, &stats.Resources},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count: %w", err)
		}
	}

	var byType []struct {
		Type  model.ResourceType
		Count int64
	}
	if err := db.Model(&model.Resource{}).Select("type, COUNT(*) AS count").Group("type").Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("failed to count resources by type: %w", err)
	}
	found := map[model.ResourceType]int64{}
	for _, row := range byType {
		found[row.Type] = row.Count
	}
	for _, t := range model.ResourceTypes {
		stats.ResourcesByType = append(stats.ResourcesByType, TypeCount{Type: t, Label: t.Label(), Count: found[t]})
	}

	var err error
	if stats.RecentResources, err = s.resources.Recent(ctx, 5); err != nil {
		return nil, err
	}
	if stats.RecentUsers, err = s.users.Recent(ctx, 5); err != nil {
		return nil, err
	}
	return stats, nil
}
