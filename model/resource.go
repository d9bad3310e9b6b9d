package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResourceType identifies which content variant a resource carries
type ResourceType string

const (
	ResourceTypeVideo   ResourceType = "video"
	ResourceTypePDF     ResourceType = "pdf"
	ResourceTypeMindmap ResourceType = "mindmap"
	ResourceTypeQuiz    ResourceType = "quiz"
	ResourceTypeLink    ResourceType = "link"
)

// ResourceTypes lists every type in display order
var ResourceTypes = []ResourceType{
	ResourceTypeVideo,
	ResourceTypePDF,
	ResourceTypeMindmap,
	ResourceTypeQuiz,
	ResourceTypeLink,
}

var resourceTypeLabels = map[ResourceType]string{
	ResourceTypeVideo:   "Video",
	ResourceTypePDF:     "PDF",
	ResourceTypeMindmap: "Mind Map",
	ResourceTypeQuiz:    "Quiz",
	ResourceTypeLink:    "Link",
}

// ParseResourceType converts form input into a known ResourceType
func ParseResourceType(s string) (ResourceType, bool) {
	t := ResourceType(s)
	_, ok := resourceTypeLabels[t]
	return t, ok
}

// Label returns the human readable name of the type
func (t ResourceType) Label() string {
	if label, ok := resourceTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// UsesURL reports whether the type is backed by an external URL
func (t ResourceType) UsesURL() bool {
	return t == ResourceTypeVideo || t == ResourceTypeQuiz || t == ResourceTypeLink
}

// Content is the type-specific payload of a resource.
// Exactly one variant is valid for each ResourceType.
type Content interface {
	accepts(t ResourceType) bool
}

// URLContent backs video, quiz and link resources
type URLContent struct {
	URL string
}

func (URLContent) accepts(t ResourceType) bool { return t.UsesURL() }

// FileContent backs pdf resources; Path is relative to the upload root (pdfs/<name>)
type FileContent struct {
	Path string
}

func (FileContent) accepts(t ResourceType) bool { return t == ResourceTypePDF }

// MindmapContent backs mindmap resources with an opaque JSON node tree
type MindmapContent struct {
	Data datatypes.JSON
}

func (MindmapContent) accepts(t ResourceType) bool { return t == ResourceTypeMindmap }

var (
	ErrContentMismatch = errors.New("content does not match resource type")
	ErrContentMissing  = errors.New("resource content is missing")
)

// Resource is one piece of learning content attached to a chapter.
// Only the column matching Type is ever populated; use SetContent to change it.
type Resource struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Type        ResourceType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ClassID     uint           `gorm:"not null;index" json:"class_id"`
	SubjectID   uint           `gorm:"not null;index" json:"subject_id"`
	ChapterID   uint           `gorm:"not null;index" json:"chapter_id"`
	ContentURL  *string        `gorm:"type:varchar(500)" json:"content_url,omitempty"`
	FilePath    *string        `gorm:"type:varchar(255);index" json:"file_path,omitempty"`
	ContentData datatypes.JSON `json:"content_data,omitempty"`
	UploadedBy  *uint          `gorm:"index" json:"uploaded_by"`
	UploadDate  time.Time      `gorm:"not null;index" json:"upload_date"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relationships
	Uploader *User `gorm:"foreignKey:UploadedBy;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for Resource
func (Resource) TableName() string {
	return "resources"
}

// Content returns the payload variant stored for the resource's type
func (r *Resource) Content() Content {
	switch {
	case r.Type.UsesURL():
		if r.ContentURL != nil {
			return URLContent{URL: *r.ContentURL}
		}
	case r.Type == ResourceTypePDF:
		if r.FilePath != nil {
			return FileContent{Path: *r.FilePath}
		}
	case r.Type == ResourceTypeMindmap:
		if len(r.ContentData) > 0 {
			return MindmapContent{Data: r.ContentData}
		}
	}
	return nil
}

// SetContent replaces the payload and clears every column that does not belong to it
func (r *Resource) SetContent(c Content) error {
	if c == nil {
		return ErrContentMissing
	}
	if !c.accepts(r.Type) {
		return ErrContentMismatch
	}

	r.ContentURL = nil
	r.FilePath = nil
	r.ContentData = nil

	switch v := c.(type) {
	case URLContent:
		r.ContentURL = &v.URL
	case FileContent:
		r.FilePath = &v.Path
	case MindmapContent:
		r.ContentData = v.Data
	}
	return nil
}

// StoredFile returns the relative path of the PDF backing the resource, if any
func (r *Resource) StoredFile() (string, bool) {
	if fc, ok := r.Content().(FileContent); ok && fc.Path != "" {
		return fc.Path, true
	}
	return "", false
}

// BeforeSave rejects rows whose populated column disagrees with Type
func (r *Resource) BeforeSave(tx *gorm.DB) error {
	populated := 0
	if r.ContentURL != nil {
		populated++
	}
	if r.FilePath != nil {
		populated++
	}
	if len(r.ContentData) > 0 {
		populated++
	}
	if populated != 1 {
		return ErrContentMissing
	}
	if r.Content() == nil {
		return ErrContentMismatch
	}
	if r.UploadDate.IsZero() {
		r.UploadDate = time.Now()
	}
	return nil
}

// ResourceListItem is a resource joined with the display names of its hierarchy and uploader
type ResourceListItem struct {
	Resource
	ClassName    string `json:"class_name"`
	SubjectName  string `json:"subject_name"`
	ChapterName  string `json:"chapter_name"`
	UploaderName string `json:"uploader_name"`
}
