package member

import (
	"context"

	"github.com/darregistry/member-registry/go-api-server/internal/model"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"gorm.io/gorm"
)

type ChapterRepository struct{}

func NewChapterRepository() *ChapterRepository {
	return &ChapterRepository{}
}

func (c *ChapterRepository) FindByID(ctx context.Context, db *gorm.DB, ID uint32) (*model.Chapter, error) {
	var chapter model.Chapter
	err := db.WithContext(ctx).Where("id = ?", ID).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// FindByIDForUpdate loads the chapter and locks its row, serializing referrer checks
func (c *ChapterRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, ID uint32) (*model.Chapter, error) {
	var chapter model.Chapter
	err := database.FindForUpdate(db.WithContext(ctx), &chapter, ID)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (c *ChapterRepository) FindByIDs(ctx context.Context, db *gorm.DB, IDs []uint32) (map[uint32]model.Chapter, error) {
	chapters := make(map[uint32]model.Chapter, len(IDs))
	if len(IDs) == 0 {
		return chapters, nil
	}

	var rows []model.Chapter
	if err := db.WithContext(ctx).Where("id IN ?", IDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		chapters[row.ID] = row
	}
	return chapters, nil
}

func (c *ChapterRepository) FindAll(ctx context.Context, db *gorm.DB) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := db.WithContext(ctx).Order("id").Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

// FindMatching returns every chapter whose (name, number) equals key ignoring case, lowest id first
func (c *ChapterRepository) FindMatching(ctx context.Context, db *gorm.DB, key model.ChapterKey) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := db.WithContext(ctx).
		Where("match_key = ?", key.MatchKey()).
		Order("id").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

// FindUnassigned returns chapters no member references
func (c *ChapterRepository) FindUnassigned(ctx context.Context, db *gorm.DB) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM member m WHERE m.chapter_id = chapter.id)").
		Order("id").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (c *ChapterRepository) Create(ctx context.Context, db *gorm.DB, chapter *model.Chapter) error {
	chapter.RefreshMatchKey()
	return db.WithContext(ctx).Create(chapter).Error
}

func (c *ChapterRepository) Save(ctx context.Context, db *gorm.DB, chapter *model.Chapter) error {
	chapter.RefreshMatchKey()
	return db.WithContext(ctx).Save(chapter).Error
}

func (c *ChapterRepository) Delete(ctx context.Context, db *gorm.DB, ID uint32) error {
	return db.WithContext(ctx).Delete(&model.Chapter{}, ID).Error
}
