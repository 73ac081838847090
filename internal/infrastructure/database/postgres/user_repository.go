package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dulanjanabandara/job-recommender-system/internal/domain/resource"
	domainUser "github.com/dulanjanabandara/job-recommender-system/internal/domain/user"
	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/database/postgres/models"
	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

var userColumns = columnMap{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"phone":     "phone",
	"photo":     "photo",
	"role":      "role",
	"createdAt": "created_at",
}

var hiddenUserColumns = []string{"password", "created_at", "active"}

// UserRepository implements domain.User.Repository interface
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) domainUser.Repository {
	return &UserRepository{db: db}
}

// visible scopes tx to active users.
func (r *UserRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.DB.WithContext(ctx).
		Model(&models.UserModel{}).
		Where(clause.Neq{Column: clause.Column{Name: "active"}, Value: false})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domainUser.User, error) {
	userID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	return r.first(r.visible(ctx).Omit(hiddenUserColumns...).Where("id = ?", userID))
}

func (r *UserRepository) FindByIDWithPassword(ctx context.Context, id string) (*domainUser.User, error) {
	userID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	return r.first(r.visible(ctx).Where("id = ?", userID))
}

func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (*domainUser.User, error) {
	return r.first(r.visible(ctx).Where("email = ?", email))
}

func (r *UserRepository) FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*domainUser.User, error) {
	return r.first(r.visible(ctx).
		Omit(hiddenUserColumns...).
		Where("password_reset_token = ? AND password_reset_expires > ?", hashedToken, now))
}

func (r *UserRepository) first(tx *gorm.DB) (*domainUser.User, error) {
	var dbModel models.UserModel
	err := tx.First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, resource.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) Find(ctx context.Context, q *query.Query) ([]*domainUser.User, error) {
	tx := r.visible(ctx)
	if len(q.Fields) == 0 {
		tx = tx.Omit(hiddenUserColumns...)
	}

	var dbModels []models.UserModel
	if err := applyQuery(tx, q, userColumns).Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domainUser.User, 0, len(dbModels))
	for i := range dbModels {
		users = append(users, toUserEntity(&dbModels[i]))
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domainUser.User) error {
	if err := u.PrepareSave(true); err != nil {
		return err
	}

	dbModel := toUserModel(u)
	dbModel.ID = uuid.New()

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return domainUser.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.ID = dbModel.ID.String()
	return nil
}

// Save writes the mutable fields of u. The password is only written when
// loaded or changed; created_at and active are left untouched.
func (r *UserRepository) Save(ctx context.Context, u *domainUser.User) error {
	userID, err := parseUUID(u.ID)
	if err != nil {
		return err
	}
	if err := u.PrepareSave(false); err != nil {
		return err
	}

	updates := map[string]any{
		"first_name":             u.FirstName,
		"last_name":              u.LastName,
		"email":                  u.Email,
		"phone":                  u.Phone,
		"photo":                  u.Photo,
		"role":                   u.Role,
		"password_changed_at":    u.PasswordChangedAt,
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	}
	if u.Password != "" {
		updates["password"] = u.Password
	}
	if u.PasswordResetToken != "" && u.PasswordResetExpires != nil {
		updates["password_reset_token"] = u.PasswordResetToken
		updates["password_reset_expires"] = *u.PasswordResetExpires
	}

	result := r.visible(ctx).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainUser.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to save user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, patch resource.Patch) (*domainUser.User, error) {
	userID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	var dbModel models.UserModel
	result := r.db.DB.WithContext(ctx).
		Model(&dbModel).
		Clauses(clause.Returning{}).
		Where(clause.Neq{Column: clause.Column{Name: "active"}, Value: false}).
		Where("id = ?", userID).
		Updates(userColumns.patch(patch))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return nil, domainUser.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, resource.ErrNotFound
	}

	dbModel.Password = ""
	dbModel.CreatedAt = time.Time{}
	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	userID, err := parseUUID(id)
	if err != nil {
		return err
	}

	result := r.db.DB.WithContext(ctx).
		Where(clause.Neq{Column: clause.Column{Name: "active"}, Value: false}).
		Where("id = ?", userID).
		Delete(&models.UserModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	userID, err := parseUUID(id)
	if err != nil {
		return err
	}

	result := r.visible(ctx).Where("id = ?", userID).Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}

	return nil
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("password_reset_expires <= ?", now).
		Updates(map[string]any{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toUserModel(u *domainUser.User) *models.UserModel {
	m := &models.UserModel{
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Email:                u.Email,
		Phone:                u.Phone,
		Photo:                u.Photo,
		Role:                 u.Role,
		Password:             u.Password,
		CreatedAt:            u.CreatedAt,
		PasswordChangedAt:    u.PasswordChangedAt,
		PasswordResetExpires: u.PasswordResetExpires,
		Active:               u.Active,
	}
	if u.PasswordResetToken != "" {
		m.PasswordResetToken = &u.PasswordResetToken
	}
	return m
}

func toUserEntity(m *models.UserModel) *domainUser.User {
	u := &domainUser.User{
		ID:                   m.ID.String(),
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		Email:                m.Email,
		Phone:                m.Phone,
		Photo:                m.Photo,
		Role:                 m.Role,
		Password:             m.Password,
		CreatedAt:            m.CreatedAt,
		PasswordChangedAt:    m.PasswordChangedAt,
		PasswordResetExpires: m.PasswordResetExpires,
		Active:               true,
	}
	if m.PasswordResetToken != nil {
		u.PasswordResetToken = *m.PasswordResetToken
	}
	return u
}
