package member

import (
	"context"

	"github.com/darregistry/member-registry/go-api-server/internal/model"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"gorm.io/gorm"
)

type MemberRepository struct{}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{}
}

func (m *MemberRepository) FindByID(ctx context.Context, db *gorm.DB, ID uint32) (*model.Member, error) {
	var member model.Member
	err := db.WithContext(ctx).Where("id = ?", ID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByIDForUpdate loads the member and locks its row until the transaction ends
func (m *MemberRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, ID uint32) (*model.Member, error) {
	var member model.Member
	err := database.FindForUpdate(db.WithContext(ctx), &member, ID)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (m *MemberRepository) FindAll(ctx context.Context, db *gorm.DB) ([]model.Member, error) {
	var members []model.Member
	err := db.WithContext(ctx).Order("id").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Save inserts the member when ID is zero (assigning ID), otherwise updates every column
func (m *MemberRepository) Save(ctx context.Context, db *gorm.DB, member *model.Member) error {
	return db.WithContext(ctx).Save(member).Error
}

func (m *MemberRepository) Delete(ctx context.Context, db *gorm.DB, ID uint32) error {
	return db.WithContext(ctx).Delete(&model.Member{}, ID).Error
}

// SetChapter updates only the chapter reference; nil clears it
func (m *MemberRepository) SetChapter(ctx context.Context, db *gorm.DB, ID uint32, chapterID *uint32) error {
	return db.WithContext(ctx).
		Model(&model.Member{}).
		Where("id = ?", ID).
		Update("chapter_id", chapterID).Error
}

// FindIDsByChapterID returns the referrer set of a chapter
func (m *MemberRepository) FindIDsByChapterID(ctx context.Context, db *gorm.DB, chapterID uint32) ([]uint32, error) {
	var IDs []uint32
	err := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("chapter_id = ?", chapterID).
		Order("id").
		Pluck("id", &IDs).Error
	if err != nil {
		return nil, err
	}
	return IDs, nil
}

func (m *MemberRepository) CountByChapterID(ctx context.Context, db *gorm.DB, chapterID uint32) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("chapter_id = ?", chapterID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ClearChapter removes the chapter reference from every referrer
func (m *MemberRepository) ClearChapter(ctx context.Context, db *gorm.DB, chapterID uint32) (int64, error) {
	result := db.WithContext(ctx).
		Model(&model.Member{}).
		Where("chapter_id = ?", chapterID).
		Update("chapter_id", nil)
	return result.RowsAffected, result.Error
}

// LockByChapterID locks every referrer of a chapter and returns their ids
func (m *MemberRepository) LockByChapterID(ctx context.Context, db *gorm.DB, chapterID uint32) ([]uint32, error) {
	var IDs []uint32
	err := database.ForUpdate(db.WithContext(ctx)).
		Model(&model.Member{}).
		Where("chapter_id = ?", chapterID).
		Order("id").
		Pluck("id", &IDs).Error
	if err != nil {
		return nil, err
	}
	return IDs, nil
}
