package repositories

import (
	"github.com/caiots/vorp-friends/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	Upsert(profile *models.UserProfile) error
	GetByUID(uid string) (*models.UserProfile, error)
	GetByUIDs(uids []string) ([]models.UserProfile, error)
	Search(query, excludeUID string, limit int) ([]models.UserProfile, error)
	UpdateBio(uid, bio string) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Upsert creates or refreshes a profile keyed by Firebase UID
func (r *PostgresUserRepository) Upsert(profile *models.UserProfile) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "avatar", "updated_at"}),
	}).Create(profile).Error
}

// GetByUID retrieves a profile by Firebase UID
func (r *PostgresUserRepository) GetByUID(uid string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.Where("uid = ?", uid).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByUIDs retrieves the profiles for a batch of Firebase UIDs. Missing
// UIDs are simply absent from the result.
func (r *PostgresUserRepository) GetByUIDs(uids []string) ([]models.UserProfile, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	var profiles []models.UserProfile
	if err := r.db.Where("uid IN ?", uids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Search finds profiles by username or display name (case-insensitive),
// excluding the caller
func (r *PostgresUserRepository) Search(query, excludeUID string, limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	pattern := "%" + query + "%"
	err := r.db.
		Where("(LOWER(username) LIKE LOWER(?) OR LOWER(display_name) LIKE LOWER(?)) AND uid <> ?", pattern, pattern, excludeUID).
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// UpdateBio sets the bio of the profile with the given UID
func (r *PostgresUserRepository) UpdateBio(uid, bio string) error {
	return r.db.Model(&models.UserProfile{}).Where("uid = ?", uid).Update("bio", bio).Error
}
