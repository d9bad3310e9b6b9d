package services_test

import (
	"bytes"
	"testing"

	"github.com/r56149203/EduSphere/database/dbtest"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/services/storage"
	"github.com/r56149203/EduSphere/utils"
	"github.com/r56149203/EduSphere/utils/auth"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const maxUpload = 10 << 20

type fixture struct {
	db        *gorm.DB
	store     *storage.LocalStore
	activity  *bytes.Buffer
	taxonomy  *services.TaxonomyService
	uploads   *services.UploadService
	resources *services.ResourceService
	users     *services.UserService

	admin model.User
	// class9 > maths > algebra, class10 > science > optics
	class9, class10 model.Class
	maths, science  model.Subject
	algebra, optics model.Chapter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t).GetDB()

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	activity := utils.NewActivityLoggerWriter(buf)
	uploads := services.NewUploadService(store, maxUpload)

	f := &fixture{
		db:        db,
		store:     store,
		activity:  buf,
		taxonomy:  services.NewTaxonomyService(db),
		uploads:   uploads,
		resources: services.NewResourceService(db, uploads, activity, 10),
		users:     services.NewUserService(db, auth.NewBlacklistService(db), activity),
	}

	f.class9 = model.Class{Name: "Class 9", Subjects: []model.Subject{
		{Name: "Mathematics", Chapters: []model.Chapter{{Name: "Algebra"}}},
	}}
	f.class10 = model.Class{Name: "Class 10", Subjects: []model.Subject{
		{Name: "Science", Chapters: []model.Chapter{{Name: "Optics"}}},
	}}
	require.NoError(t, db.Create(&f.class9).Error)
	require.NoError(t, db.Create(&f.class10).Error)
	f.maths, f.algebra = f.class9.Subjects[0], f.class9.Subjects[0].Chapters[0]
	f.science, f.optics = f.class10.Subjects[0], f.class10.Subjects[0].Chapters[0]

	f.admin = model.User{FullName: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, db.Create(&f.admin).Error)
	return f
}

func (f *fixture) actor() services.Actor {
	return services.Actor{UserID: f.admin.ID, IP: "127.0.0.1"}
}

// input returns a valid link resource in class9 > maths > algebra
func (f *fixture) input(title string) services.ResourceInput {
	return services.ResourceInput{
		Type:       "link",
		Title:      title,
		ClassID:    f.class9.ID,
		SubjectID:  f.maths.ID,
		ChapterID:  f.algebra.ID,
		ContentURL: "https://example.com/" + title,
	}
}

func (f *fixture) countResources(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Resource{}).Count(&n).Error)
	return n
}

func (f *fixture) storedFiles(t *testing.T) []storage.FileInfo {
	t.Helper()
	files, err := f.store.List()
	require.NoError(t, err)
	return files
}
