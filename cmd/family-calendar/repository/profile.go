package repository

import (
	"context"
	"family-calendar-backend/cmd/family-calendar/model"
	"time"

	"gorm.io/gorm"
)

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{
		db: db,
	}
}

func (r *ProfileRepo) GetProfile(ctx context.Context, id string) (model.Profile, error) {

	var profile model.Profile

	result := r.db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&profile)

	if result.Error != nil {
		return model.Profile{}, translate(result.Error)
	}

	return profile, nil
}

func (r *ProfileRepo) GetProfileByEmail(ctx context.Context, email string) (model.Profile, error) {

	var profile model.Profile

	result := r.db.
		WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&profile)

	if result.Error != nil {
		return model.Profile{}, translate(result.Error)
	}

	return profile, nil
}

func (r *ProfileRepo) UpdateAllowedEditors(ctx context.Context, id string, editors []string, now time.Time) error {

	result := r.db.
		WithContext(ctx).
		Model(&model.Profile{ID: id}).
		Select("allowed_editors", "updated_at").
		Updates(&model.Profile{AllowedEditors: editors, UpdatedAt: now})

	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

// ListEditableOwners returns the profiles whose allow-list names actorID.
func (r *ProfileRepo) ListEditableOwners(ctx context.Context, actorID string) ([]model.Profile, error) {

	var profiles []model.Profile

	result := r.db.
		WithContext(ctx).
		Where("allowed_editors LIKE ?", `%"`+actorID+`"%`).
		Order("full_name ASC").
		Find(&profiles)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return profiles, nil
}

func (r *ProfileRepo) ListFamilyMembers(ctx context.Context, familyID string) ([]model.Profile, error) {

	var profiles []model.Profile

	result := r.db.
		WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("created_at ASC").
		Find(&profiles)

	if result.Error != nil {
		return nil, translate(result.Error)
	}

	return profiles, nil
}

// SetFamily moves a user into familyID, or out of any family when familyID is nil.
func (r *ProfileRepo) SetFamily(ctx context.Context, id string, familyID *string, now time.Time) error {

	result := r.db.
		WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]any{"family_id": familyID, "updated_at": now})

	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *ProfileRepo) TouchLastSeen(ctx context.Context, id string, now time.Time) error {

	result := r.db.
		WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", id).
		Update("last_seen_at", now)

	return translate(result.Error)
}
