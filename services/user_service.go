package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/utils"
	"github.com/r56149203/EduSphere/utils/auth"
	"github.com/r56149203/EduSphere/utils/validation"
	"gorm.io/gorm"
)

// RegisterInput is the public registration form
type RegisterInput struct {
	FullName        string `form:"full_name" validate:"required,min=2,max=100" label:"Full name"`
	Email           string `form:"email" validate:"required,email,max=255" label:"Email"`
	Password        string `form:"password" validate:"required" label:"Password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password" label:"Password confirmation"`
}

// ProfileInput is the self-service profile form
type ProfileInput struct {
	FullName string `form:"full_name" validate:"required,min=2,max=100" label:"Full name"`
	Email    string `form:"email" validate:"required,email,max=255" label:"Email"`
}

// PasswordInput is the self-service password change form
type PasswordInput struct {
	CurrentPassword string `form:"current_password" validate:"required" label:"Current password"`
	NewPassword     string `form:"new_password" validate:"required" label:"New password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword" label:"Password confirmation"`
}

// UserService handles accounts, credentials and roles
type UserService struct {
	db        *gorm.DB
	validator *validation.Validator
	blacklist *auth.BlacklistService
	activity  *utils.ActivityLogger
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, blacklist *auth.BlacklistService, activity *utils.ActivityLogger) *UserService {
	return &UserService{
		db:        db,
		validator: validation.NewValidator(),
		blacklist: blacklist,
		activity:  activity,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(validation.SanitizeString(email))
}

func strengthMessage(err error) string {
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return "Password must be at least 8 characters long."
	}
	return "Password must contain at least one uppercase letter, one lowercase letter, and one number."
}

func (s *UserService) emailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Register creates a student account
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.FullName = validation.CleanText(in.FullName)
	in.Email = normalizeEmail(in.Email)

	var messages []string
	if err := s.validator.ValidateStruct(in); err != nil {
		messages = validation.FormatValidationErrors(err)
	}
	if in.Password != "" {
		if err := auth.CheckStrength(in.Password); err != nil {
			messages = append(messages, strengthMessage(err))
		}
	}
	if len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}

	taken, err := s.emailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.activity.Log(user.ID, "", "register", "New user registered")
	return user, nil
}

// Authenticate returns the user for valid credentials, else ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, NewValidationError("Please enter both email and password.")
	}

	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID returns a user or ErrNotFound
func (s *UserService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile changes the caller's name and email
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*model.User, error) {
	in.FullName = validation.CleanText(in.FullName)
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.ValidateStruct(in); err != nil {
		return nil, NewValidationError(validation.FormatValidationErrors(err)...)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(ctx, in.Email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"full_name": in.FullName,
		"email":     in.Email,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	user.FullName = in.FullName
	user.Email = in.Email

	s.activity.Log(userID, "", "update_profile", "Updated profile")
	return user, nil
}

// ChangePassword verifies the current password, stores the new one and bumps the
// token version so every existing session ends
func (s *UserService) ChangePassword(ctx context.Context, userID uint, in PasswordInput) (*model.User, error) {
	var messages []string
	if err := s.validator.ValidateStruct(in); err != nil {
		messages = validation.FormatValidationErrors(err)
	}
	if in.NewPassword != "" {
		if err := auth.CheckStrength(in.NewPassword); err != nil {
			messages = append(messages, strengthMessage(err))
		}
	}
	if len(messages) > 0 {
		return nil, NewValidationError(messages...)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, in.CurrentPassword); err != nil {
		return nil, ErrWrongPassword
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := s.blacklist.WithTx(tx).RevokeAllUserTokens(ctx, userID); err != nil {
			return fmt.Errorf("failed to end sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(userID, "", "change_password", "Changed password")
	return s.GetByID(ctx, userID)
}

// ListUsers returns every user, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Recent returns the n newest users
func (s *UserService) Recent(ctx context.Context, n int) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(n).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	return users, nil
}

// UpdateRole changes the role of userID. An admin cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actor Actor, userID uint, role string) (*model.User, error) {
	if !model.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if userID == actor.UserID {
		return nil, ErrSelfRoleChange
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = role

	s.activity.Log(actor.UserID, actor.IP, "update_user_role", fmt.Sprintf("Updated user %d to %s", userID, role))
	return user, nil
}

// Delete removes userID. Resources they uploaded are kept with no uploader.
func (s *UserService) Delete(ctx context.Context, actor Actor, userID uint) error {
	if userID == actor.UserID {
		return ErrSelfDelete
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if err := tx.Model(&model.Resource{}).Where("uploaded_by = ?", userID).UpdateColumn("uploaded_by", nil).Error; err != nil {
			return fmt.Errorf("failed to detach resources: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.JWTTokenBlacklist{}).Error; err != nil {
			return fmt.Errorf("failed to delete user tokens: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Log(actor.UserID, actor.IP, "delete_user", fmt.Sprintf("Deleted user %d", userID))
	return nil
}
