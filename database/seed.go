package database

import (
	"fmt"
	"log"

	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/utils/auth"
	"gorm.io/gorm"
)

// AdminSeed carries the credentials of the first admin account
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll(admin AdminSeed) error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedTaxonomy(); err != nil {
		return fmt.Errorf("failed to seed taxonomy: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser(admin AdminSeed) error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	if admin.Email == "" || admin.Password == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        admin.Email,
		PasswordHash: passwordHash,
		FullName:     admin.Name,
		Role:         model.RoleAdmin,
	}

	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	log.Printf("Created admin user: %s\n", user.Email)
	return nil
}

// sampleTaxonomy maps class -> subject -> chapters
var sampleTaxonomy = []struct {
	Class    string
	Subjects []struct {
		Name     string
		Chapters []string
	}
}{
	{
		Class: "Class 9",
		Subjects: []struct {
			Name     string
			Chapters []string
		}{
			{Name: "Mathematics", Chapters: []string{"Number Systems", "Polynomials", "Coordinate Geometry"}},
			{Name: "Science", Chapters: []string{"Matter in Our Surroundings", "The Fundamental Unit of Life"}},
		},
	},
	{
		Class: "Class 10",
		Subjects: []struct {
			Name     string
			Chapters []string
		}{
			{Name: "Mathematics", Chapters: []string{"Real Numbers", "Quadratic Equations", "Trigonometry"}},
			{Name: "Science", Chapters: []string{"Chemical Reactions", "Life Processes", "Electricity"}},
		},
	},
}

// SeedTaxonomy creates a sample class/subject/chapter hierarchy when none exists
func (s *Seeder) SeedTaxonomy() error {
	var count int64
	if err := s.db.Model(&model.Class{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Classes already exist, skipping...")
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range sampleTaxonomy {
			class := model.Class{Name: c.Class}
			for _, sub := range c.Subjects {
				subject := model.Subject{Name: sub.Name}
				for _, ch := range sub.Chapters {
					subject.Chapters = append(subject.Chapters, model.Chapter{Name: ch})
				}
				class.Subjects = append(class.Subjects, subject)
			}
			// Nested create inserts subjects and chapters through the associations
			if err := tx.Create(&class).Error; err != nil {
				return err
			}
			log.Printf("Created class %q with %d subjects\n", class.Name, len(class.Subjects))
		}
		return nil
	})
}
