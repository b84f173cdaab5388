// Package adminrepo seeds administrator accounts. Admins are only ever created by the
// bootstrap step.
package adminrepo

import (
	"context"
	"strings"
	"time"

	"dispatch/internal/pkg/pgerr"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (AdminDTO) TableName() string {
	return "admins"
}

type GormAdminRepository struct {
	db *gorm.DB
}

// NewGormAdminRepository creates the admin account store used by the bootstrap command.
func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// EnsureAdmin creates the admin unless one with the same email exists. It reports the id
// of the stored admin and whether this call created it. The password is stored as a
// bcrypt hash.
func (r *GormAdminRepository) EnsureAdmin(ctx context.Context, name, email, password string) (uuid.UUID, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, false, err
	}

	dto := AdminDTO{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&dto)
	if res.Error != nil {
		return uuid.Nil, false, pgerr.Translate("seed admin", res.Error)
	}
	if res.RowsAffected == 1 {
		return dto.ID, true, nil
	}

	var existing AdminDTO
	if err := r.db.WithContext(ctx).Take(&existing, "email = ?", email).Error; err != nil {
		return uuid.Nil, false, pgerr.Translate("get admin", err)
	}
	return existing.ID, false, nil
}
