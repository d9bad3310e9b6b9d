package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/r56149203/EduSphere/model"
	"gorm.io/gorm"
)

// TaxonomyService reads the class > subject > chapter hierarchy
type TaxonomyService struct {
	db *gorm.DB
}

// NewTaxonomyService creates a new taxonomy service
func NewTaxonomyService(db *gorm.DB) *TaxonomyService {
	return &TaxonomyService{db: db}
}

// ListClasses returns all classes ordered by name
func (s *TaxonomyService) ListClasses(ctx context.Context) ([]model.Class, error) {
	classes := []model.Class{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&classes).Error; err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

// ListSubjects returns the subjects of classID ordered by name; unknown ids yield an empty list
func (s *TaxonomyService) ListSubjects(ctx context.Context, classID uint) ([]model.Subject, error) {
	subjects := []model.Subject{}
	if err := s.db.WithContext(ctx).Where("class_id = ?", classID).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// ListChapters returns the chapters of subjectID ordered by name; unknown ids yield an empty list
func (s *TaxonomyService) ListChapters(ctx context.Context, subjectID uint) ([]model.Chapter, error) {
	chapters := []model.Chapter{}
	if err := s.db.WithContext(ctx).Where("subject_id = ?", subjectID).Order("name ASC").Find(&chapters).Error; err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

// GetClass returns a class or ErrNotFound
func (s *TaxonomyService) GetClass(ctx context.Context, id uint) (*model.Class, error) {
	var class model.Class
	if err := s.db.WithContext(ctx).First(&class, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}
	return &class, nil
}

// GetSubject returns a subject and the class it belongs to
func (s *TaxonomyService) GetSubject(ctx context.Context, id uint) (*model.Subject, *model.Class, error) {
	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get subject: %w", err)
	}
	class, err := s.GetClass(ctx, subject.ClassID)
	if err != nil {
		return nil, nil, err
	}
	return &subject, class, nil
}

// GetChapterHierarchy returns the full path of a chapter
func (s *TaxonomyService) GetChapterHierarchy(ctx context.Context, chapterID uint) (*model.Hierarchy, error) {
	return resolveHierarchy(s.db.WithContext(ctx), "chapters.id = ?", chapterID)
}

// ResolveHierarchy checks that chapterID belongs to subjectID which belongs to classID.
// An inconsistent or unknown triple is ErrNotFound.
func (s *TaxonomyService) ResolveHierarchy(ctx context.Context, classID, subjectID, chapterID uint) (*model.Hierarchy, error) {
	return resolveTriple(s.db.WithContext(ctx), classID, subjectID, chapterID)
}

// checkHierarchy is ResolveHierarchy for write paths, where a bad triple is a form error
func checkHierarchy(tx *gorm.DB, classID, subjectID, chapterID uint) error {
	_, err := resolveTriple(tx, classID, subjectID, chapterID)
	if errors.Is(err, ErrNotFound) {
		return ErrHierarchy
	}
	return err
}

func resolveTriple(db *gorm.DB, classID, subjectID, chapterID uint) (*model.Hierarchy, error) {
	return resolveHierarchy(db, "chapters.id = ? AND subjects.id = ? AND classes.id = ?", chapterID, subjectID, classID)
}

func resolveHierarchy(db *gorm.DB, where string, args ...interface{}) (*model.Hierarchy, error) {
	var h model.Hierarchy
	err := db.Table("chapters").
		Select(`classes.id AS class_id, classes.name AS class_name,
			subjects.id AS subject_id, subjects.name AS subject_name,
			chapters.id AS chapter_id, chapters.name AS chapter_name`).
		Joins("JOIN subjects ON subjects.id = chapters.subject_id").
		Joins("JOIN classes ON classes.id = subjects.class_id").
		Where(where, args...).
		Take(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve hierarchy: %w", err)
	}
	return &h, nil
}
