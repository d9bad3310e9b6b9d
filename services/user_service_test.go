package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, email string) *model.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), services.RegisterInput{
		FullName:        "Asha Rao",
		Email:           email,
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := register(t, f, "Asha@Example.com")
	assert.Equal(t, model.RoleStudent, user.Role)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	got, err := f.users.Authenticate(ctx, "asha@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.users.Authenticate(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = f.users.Authenticate(ctx, "nobody@example.com", "Secret123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	register(t, f, "asha@example.com")

	_, err := f.users.Register(context.Background(), services.RegisterInput{
		FullName:        "Another",
		Email:           "ASHA@example.com",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.Equal(t, []string{"Email address is already registered."}, services.Messages(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), services.RegisterInput{
		FullName:        "A",
		Email:           "not-an-email",
		Password:        "weakpass",
		ConfirmPassword: "different",
	})
	assert.Equal(t, []string{
		"Full name must be at least 2 characters.",
		"Please enter a valid email address.",
		"Password confirmation does not match.",
		"Password must contain at least one uppercase letter, one lowercase letter, and one number.",
	}, validationMessages(t, err))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "asha@example.com")

	_, err := f.users.UpdateProfile(ctx, user.ID, services.ProfileInput{FullName: "Asha", Email: f.admin.Email})
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	updated, err := f.users.UpdateProfile(ctx, user.ID, services.ProfileInput{FullName: "Asha R", Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Asha R", updated.FullName)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "asha@example.com")

	_, err := f.users.ChangePassword(ctx, user.ID, services.PasswordInput{
		CurrentPassword: "wrong", NewPassword: "Newpass123", ConfirmPassword: "Newpass123",
	})
	assert.ErrorIs(t, err, services.ErrWrongPassword)

	updated, err := f.users.ChangePassword(ctx, user.ID, services.PasswordInput{
		CurrentPassword: "Secret123", NewPassword: "Newpass123", ConfirmPassword: "Newpass123",
	})
	require.NoError(t, err)
	assert.Equal(t, user.TokenVersion+1, updated.TokenVersion)

	var stored model.User
	require.NoError(t, f.db.First(&stored, user.ID).Error)
	assert.Equal(t, updated.TokenVersion, stored.TokenVersion)
	assert.NotEqual(t, user.PasswordHash, stored.PasswordHash)

	_, err = f.users.Authenticate(ctx, "asha@example.com", "Newpass123")
	assert.NoError(t, err)
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "asha@example.com")

	updated, err := f.users.UpdateRole(ctx, f.actor(), user.ID, model.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, updated.Role)
	assert.Contains(t, f.activity.String(), "[Action: update_user_role]")

	_, err = f.users.UpdateRole(ctx, f.actor(), user.ID, "superuser")
	assert.ErrorIs(t, err, services.ErrInvalidRole)

	_, err = f.users.UpdateRole(ctx, f.actor(), f.admin.ID, model.RoleStudent)
	assert.ErrorIs(t, err, services.ErrSelfRoleChange)

	_, err = f.users.UpdateRole(ctx, f.actor(), 9999, model.RoleStudent)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	teacher := register(t, f, "teacher@example.com")
	res, err := f.resources.Create(ctx, services.Actor{UserID: teacher.ID}, f.input("notes"))
	require.NoError(t, err)

	require.NoError(t, f.users.Delete(ctx, f.actor(), teacher.ID))
	_, err = f.users.GetByID(ctx, teacher.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	got, err := f.resources.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UploadedBy)

	assert.ErrorIs(t, f.users.Delete(ctx, f.actor(), teacher.ID), services.ErrNotFound)

	// a user who never uploaded anything
	student := register(t, f, "student@example.com")
	require.NoError(t, f.users.Delete(ctx, f.actor(), student.ID))
	_, err = f.users.GetByID(ctx, student.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteSelfIsRejected(t *testing.T) {
	f := newFixture(t)

	err := f.users.Delete(context.Background(), f.actor(), f.admin.ID)
	assert.ErrorIs(t, err, services.ErrSelfDelete)

	_, err = f.users.GetByID(context.Background(), f.admin.ID)
	assert.NoError(t, err)
}

func TestListUsersNewestFirst(t *testing.T) {
	f := newFixture(t)
	register(t, f, "a@example.com")
	time.Sleep(10 * time.Millisecond)
	register(t, f, "b@example.com")

	users, err := f.users.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "b@example.com", users[0].Email)
	assert.Equal(t, f.admin.Email, users[2].Email)
}

func TestAuditPurge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	audit := services.NewAuditService(f.db)

	old := model.AdminAuditLog{AdminID: f.admin.ID, Action: "delete_user", CreatedAt: time.Now().AddDate(0, 0, -200)}
	fresh := model.AdminAuditLog{AdminID: f.admin.ID, Action: "update_user_role"}
	require.NoError(t, f.db.Create(&old).Error)
	require.NoError(t, f.db.Create(&fresh).Error)

	n, err := audit.PurgeOlderThan(ctx, time.Now().AddDate(0, 0, -180))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	page, err := audit.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "update_user_role", page.Items[0].Action)
	assert.Equal(t, f.admin.Email, page.Items[0].Admin.Email)
}
