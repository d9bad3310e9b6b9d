package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/utils"
	"github.com/r56149203/EduSphere/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actor identifies who performs a write, for the activity log
type Actor struct {
	UserID uint
	IP     string
}

// ResourceInput is the admin form for a resource
type ResourceInput struct {
	Type        string
	Title       string
	Description string
	ClassID     uint
	SubjectID   uint
	ChapterID   uint
	ContentURL  string
	MindmapData string
	// File is the uploaded PDF, nil when none was sent
	File *FileUpload
}

// ResourcePage is one page of the resource listing
type ResourcePage struct {
	Items    []model.ResourceListItem
	Total    int64
	Page     int
	PageSize int
}

// ResourceGroup is the resources of one type on a chapter page
type ResourceGroup struct {
	Type  model.ResourceType
	Label string
	Items []model.Resource
}

// ResourceService owns the resources table and the files it references
type ResourceService struct {
	db        *gorm.DB
	uploads   *UploadService
	validator *validation.Validator
	activity  *utils.ActivityLogger
	pageSize  int
}

// NewResourceService creates a new resource service; pageSize is the default listing size
func NewResourceService(db *gorm.DB, uploads *UploadService, activity *utils.ActivityLogger, pageSize int) *ResourceService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ResourceService{
		db:        db,
		uploads:   uploads,
		validator: validation.NewValidator(),
		activity:  activity,
		pageSize:  pageSize,
	}
}

// PageSize returns the default listing size
func (s *ResourceService) PageSize() int {
	return s.pageSize
}

type cleanedInput struct {
	resourceType model.ResourceType
	title        string
	description  string
}

func (s *ResourceService) clean(in ResourceInput) (cleanedInput, error) {
	out := cleanedInput{
		title:       validation.CleanText(in.Title),
		description: validation.CleanText(in.Description),
	}
	if out.title == "" || in.ClassID == 0 || in.SubjectID == 0 || in.ChapterID == 0 {
		return out, NewValidationError("Please fill all required fields.")
	}
	if len(out.title) > 255 {
		return out, NewValidationError("Title must be at most 255 characters.")
	}
	t, ok := model.ParseResourceType(in.Type)
	if !ok {
		return out, NewValidationError("Please select a valid resource type.")
	}
	out.resourceType = t
	return out, nil
}

// nonFileContent builds the payload of URL and mindmap types
func (s *ResourceService) nonFileContent(t model.ResourceType, in ResourceInput) (model.Content, error) {
	switch {
	case t.UsesURL():
		url := validation.SanitizeString(in.ContentURL)
		if url == "" {
			return nil, NewValidationError("URL is required for this resource type.")
		}
		if err := s.validator.Var(url, "http_url,max=500"); err != nil {
			return nil, NewValidationError("Please enter a valid URL starting with http:// or https://.")
		}
		return model.URLContent{URL: url}, nil
	case t == model.ResourceTypeMindmap:
		data := validation.SanitizeString(in.MindmapData)
		if data == "" {
			return nil, NewValidationError("Mindmap data is required.")
		}
		if !json.Valid([]byte(data)) {
			return nil, NewValidationError("Mindmap data must be valid JSON.")
		}
		return model.MindmapContent{Data: datatypes.JSON(data)}, nil
	}
	return nil, fmt.Errorf("unsupported resource type %q", t)
}

// Create validates input, stores the PDF if any and inserts the row.
// A row is never written with a dangling file, and a stored file never outlives a failed insert.
func (s *ResourceService) Create(ctx context.Context, actor Actor, in ResourceInput) (*model.Resource, error) {
	cleaned, err := s.clean(in)
	if err != nil {
		return nil, err
	}

	var content model.Content
	var uploaded string
	if cleaned.resourceType == model.ResourceTypePDF {
		if in.File == nil {
			return nil, NewValidationError("Please select a PDF file to upload.")
		}
		uploaded, err = s.uploads.Upload(ctx, in.File)
		if err != nil {
			return nil, err
		}
		content = model.FileContent{Path: uploaded}
	} else {
		content, err = s.nonFileContent(cleaned.resourceType, in)
		if err != nil {
			return nil, err
		}
	}

	resource := model.Resource{
		Type:        cleaned.resourceType,
		Title:       cleaned.title,
		Description: cleaned.description,
		ClassID:     in.ClassID,
		SubjectID:   in.SubjectID,
		ChapterID:   in.ChapterID,
	}
	if actor.UserID != 0 {
		uploader := actor.UserID
		resource.UploadedBy = &uploader
	}
	if err := resource.SetContent(content); err != nil {
		s.removeFile(ctx, uploaded)
		return nil, fmt.Errorf("failed to set content: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkHierarchy(tx, in.ClassID, in.SubjectID, in.ChapterID); err != nil {
			return err
		}
		if err := tx.Create(&resource).Error; err != nil {
			return fmt.Errorf("failed to create resource: %w", err)
		}
		return nil
	})
	if err != nil {
		s.removeFile(ctx, uploaded)
		return nil, err
	}

	s.activity.Log(actor.UserID, actor.IP, "add_resource", fmt.Sprintf("Added %s: %s", resource.Type, resource.Title))
	return &resource, nil
}

// Update applies input to resource id. For pdf without a new file the current file is kept.
// A replaced or no longer referenced file is deleted only after the row is committed.
func (s *ResourceService) Update(ctx context.Context, actor Actor, id uint, in ResourceInput) (*model.Resource, error) {
	resource, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldFile, hadFile := resource.StoredFile()

	cleaned, err := s.clean(in)
	if err != nil {
		return nil, err
	}

	var content model.Content
	var uploaded string
	if cleaned.resourceType == model.ResourceTypePDF {
		switch {
		case in.File != nil:
			uploaded, err = s.uploads.Upload(ctx, in.File)
			if err != nil {
				return nil, err
			}
			content = model.FileContent{Path: uploaded}
		case hadFile:
			content = model.FileContent{Path: oldFile}
		default:
			return nil, NewValidationError("Please select a PDF file to upload.")
		}
	} else {
		content, err = s.nonFileContent(cleaned.resourceType, in)
		if err != nil {
			return nil, err
		}
	}

	resource.Type = cleaned.resourceType
	resource.Title = cleaned.title
	resource.Description = cleaned.description
	resource.ClassID = in.ClassID
	resource.SubjectID = in.SubjectID
	resource.ChapterID = in.ChapterID
	if err := resource.SetContent(content); err != nil {
		s.removeFile(ctx, uploaded)
		return nil, fmt.Errorf("failed to set content: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkHierarchy(tx, in.ClassID, in.SubjectID, in.ChapterID); err != nil {
			return err
		}
		if err := tx.Save(resource).Error; err != nil {
			return fmt.Errorf("failed to update resource: %w", err)
		}
		return nil
	})
	if err != nil {
		s.removeFile(ctx, uploaded)
		return nil, err
	}

	if newFile, _ := resource.StoredFile(); hadFile && newFile != oldFile {
		s.removeFile(ctx, oldFile)
	}

	s.activity.Log(actor.UserID, actor.IP, "update_resource", fmt.Sprintf("Updated %s: %s", resource.Type, resource.Title))
	return resource, nil
}

// Delete removes the row, then its PDF. A missing file is not an error.
func (s *ResourceService) Delete(ctx context.Context, actor Actor, id uint) error {
	resource, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&model.Resource{}, resource.ID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete resource: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	if file, ok := resource.StoredFile(); ok {
		s.removeFile(ctx, file)
	}

	s.activity.Log(actor.UserID, actor.IP, "delete_resource", "Deleted resource: "+resource.Title)
	return nil
}

// GetByID returns a resource or ErrNotFound
func (s *ResourceService) GetByID(ctx context.Context, id uint) (*model.Resource, error) {
	var resource model.Resource
	if err := s.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &resource, nil
}

// listed restricts resources to those whose class, subject and chapter still exist
func (s *ResourceService) listed(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("resources").
		Joins("JOIN classes ON classes.id = resources.class_id").
		Joins("JOIN subjects ON subjects.id = resources.subject_id").
		Joins("JOIN chapters ON chapters.id = resources.chapter_id")
}

func (s *ResourceService) listQuery(ctx context.Context) *gorm.DB {
	return s.listed(ctx).
		Select(`resources.*, classes.name AS class_name, subjects.name AS subject_name,
			chapters.name AS chapter_name, COALESCE(users.full_name, '') AS uploader_name`).
		Joins("LEFT JOIN users ON users.id = resources.uploaded_by").
		Order("resources.upload_date DESC, resources.id DESC")
}

// List returns a page of resources, newest first. page is clamped to 1 and
// a non-positive pageSize uses the configured default.
func (s *ResourceService) List(ctx context.Context, page, pageSize int) (*ResourcePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	var total int64
	if err := s.listed(ctx).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count resources: %w", err)
	}

	items := []model.ResourceListItem{}
	err := s.listQuery(ctx).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	return &ResourcePage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Recent returns the n newest resources
func (s *ResourceService) Recent(ctx context.Context, n int) ([]model.ResourceListItem, error) {
	items := []model.ResourceListItem{}
	if err := s.listQuery(ctx).Limit(n).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent resources: %w", err)
	}
	return items, nil
}

// ListByChapter returns the chapter's resources grouped by type in display order,
// titles ascending within a group. Types without resources are omitted.
func (s *ResourceService) ListByChapter(ctx context.Context, chapterID uint) ([]ResourceGroup, error) {
	var resources []model.Resource
	err := s.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("title ASC").
		Find(&resources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chapter resources: %w", err)
	}
	return GroupByType(resources), nil
}

// GroupByType buckets resources by type in display order
func GroupByType(resources []model.Resource) []ResourceGroup {
	byType := map[model.ResourceType][]model.Resource{}
	for _, r := range resources {
		byType[r.Type] = append(byType[r.Type], r)
	}

	groups := make([]ResourceGroup, 0, len(byType))
	for _, t := range model.ResourceTypes {
		items, ok := byType[t]
		if !ok {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Title < items[j].Title })
		groups = append(groups, ResourceGroup{Type: t, Label: t.Label(), Items: items})
	}
	return groups
}

// ReferencedFiles returns every file path currently referenced by a resource
func (s *ResourceService) ReferencedFiles(ctx context.Context) (map[string]bool, error) {
	return ReferencedFiles(s.db.WithContext(ctx))
}

// ReferencedFiles returns every file path currently referenced by a resource
func ReferencedFiles(db *gorm.DB) (map[string]bool, error) {
	var paths []string
	if err := db.Model(&model.Resource{}).Where("file_path IS NOT NULL").Pluck("file_path", &paths).Error; err != nil {
		return nil, fmt.Errorf("failed to list referenced files: %w", err)
	}
	refs := make(map[string]bool, len(paths))
	for _, p := range paths {
		refs[p] = true
	}
	return refs, nil
}

func (s *ResourceService) removeFile(ctx context.Context, relPath string) {
	if relPath == "" {
		return
	}
	if err := s.uploads.Remove(ctx, relPath); err != nil {
		log.Printf("resource: failed to remove file %s: %v", relPath, err)
	}
}
