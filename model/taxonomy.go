package model

import "time"

// Class is the root of the content hierarchy (a grade or grouping)
type Class struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;index" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Subjects []Subject `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
}

// TableName specifies the table name for Class
func (Class) TableName() string {
	return "classes"
}

// Subject belongs to exactly one Class
type Subject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Chapters []Chapter `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
}

// TableName specifies the table name for Subject
func (Subject) TableName() string {
	return "subjects"
}

// Chapter belongs to exactly one Subject and is the unit resources attach to
type Chapter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SubjectID uint      `gorm:"not null;index" json:"subject_id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Chapter
func (Chapter) TableName() string {
	return "chapters"
}

// Hierarchy holds the display names of a resolved class/subject/chapter triple
type Hierarchy struct {
	ClassID     uint   `json:"class_id"`
	ClassName   string `json:"class_name"`
	SubjectID   uint   `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	ChapterID   uint   `json:"chapter_id"`
	ChapterName string `json:"chapter_name"`
}
