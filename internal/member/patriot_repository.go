package member

import (
	"context"
	"time"

	"github.com/darregistry/member-registry/go-api-server/internal/model"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PatriotRepository stores patriots and the member_patriot join rows
type PatriotRepository struct{}

func NewPatriotRepository() *PatriotRepository {
	return &PatriotRepository{}
}

func (p *PatriotRepository) FindByID(ctx context.Context, db *gorm.DB, ID uint32) (*model.Patriot, error) {
	var patriot model.Patriot
	err := db.WithContext(ctx).Where("id = ?", ID).First(&patriot).Error
	if err != nil {
		return nil, err
	}
	return &patriot, nil
}

// FindByIDForUpdate loads the patriot and locks its row until the transaction ends
func (p *PatriotRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, ID uint32) (*model.Patriot, error) {
	var patriot model.Patriot
	err := database.FindForUpdate(db.WithContext(ctx), &patriot, ID)
	if err != nil {
		return nil, err
	}
	return &patriot, nil
}

func (p *PatriotRepository) FindAll(ctx context.Context, db *gorm.DB) ([]model.Patriot, error) {
	var patriots []model.Patriot
	err := db.WithContext(ctx).Order("id").Find(&patriots).Error
	if err != nil {
		return nil, err
	}
	return patriots, nil
}

// FindMatching returns every patriot whose natural key equals key ignoring case, lowest id first
func (p *PatriotRepository) FindMatching(ctx context.Context, db *gorm.DB, key model.PatriotKey) ([]model.Patriot, error) {
	var patriots []model.Patriot
	err := db.WithContext(ctx).
		Where("match_key = ?", key.MatchKey()).
		Order("id").
		Find(&patriots).Error
	if err != nil {
		return nil, err
	}
	return patriots, nil
}

// FindUnassigned returns patriots with no member_patriot rows
func (p *PatriotRepository) FindUnassigned(ctx context.Context, db *gorm.DB) ([]model.Patriot, error) {
	var patriots []model.Patriot
	err := db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM member_patriot mp WHERE mp.patriot_id = patriot.id)").
		Order("id").
		Find(&patriots).Error
	if err != nil {
		return nil, err
	}
	return patriots, nil
}

func (p *PatriotRepository) FindByMemberID(ctx context.Context, db *gorm.DB, memberID uint32) ([]model.Patriot, error) {
	var patriots []model.Patriot
	err := db.WithContext(ctx).
		Where("id IN (SELECT mp.patriot_id FROM member_patriot mp WHERE mp.member_id = ?)", memberID).
		Order("id").
		Find(&patriots).Error
	if err != nil {
		return nil, err
	}
	return patriots, nil
}

type memberPatriotRow struct {
	model.Patriot `gorm:"embedded"`
	MemberID      uint32 `gorm:"column:member_id"`
}

// FindByMemberIDs groups the linked patriots of several members in one query
func (p *PatriotRepository) FindByMemberIDs(ctx context.Context, db *gorm.DB, memberIDs []uint32) (map[uint32][]model.Patriot, error) {
	grouped := make(map[uint32][]model.Patriot, len(memberIDs))
	if len(memberIDs) == 0 {
		return grouped, nil
	}

	var rows []memberPatriotRow
	err := db.WithContext(ctx).
		Table("patriot").
		Select("patriot.*, mp.member_id").
		Joins("JOIN member_patriot mp ON mp.patriot_id = patriot.id").
		Where("mp.member_id IN ?", memberIDs).
		Order("mp.member_id, patriot.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		grouped[row.MemberID] = append(grouped[row.MemberID], row.Patriot)
	}
	return grouped, nil
}

func (p *PatriotRepository) Create(ctx context.Context, db *gorm.DB, patriot *model.Patriot) error {
	patriot.RefreshMatchKey()
	return db.WithContext(ctx).Create(patriot).Error
}

func (p *PatriotRepository) Save(ctx context.Context, db *gorm.DB, patriot *model.Patriot) error {
	patriot.RefreshMatchKey()
	return db.WithContext(ctx).Save(patriot).Error
}

func (p *PatriotRepository) Delete(ctx context.Context, db *gorm.DB, ID uint32) error {
	return db.WithContext(ctx).Delete(&model.Patriot{}, ID).Error
}

// Link inserts the join row. Returns false when the link already existed.
func (p *PatriotRepository) Link(ctx context.Context, db *gorm.DB, memberID, patriotID uint32) (bool, error) {
	row := &model.MemberPatriot{
		MemberID:  memberID,
		PatriotID: patriotID,
		CreatedAt: time.Now().UTC(),
	}
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Unlink deletes the join row. Returns false when there was no link.
func (p *PatriotRepository) Unlink(ctx context.Context, db *gorm.DB, memberID, patriotID uint32) (bool, error) {
	result := db.WithContext(ctx).
		Where("member_id = ? AND patriot_id = ?", memberID, patriotID).
		Delete(&model.MemberPatriot{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (p *PatriotRepository) IsLinked(ctx context.Context, db *gorm.DB, memberID, patriotID uint32) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.MemberPatriot{}).
		Where("member_id = ? AND patriot_id = ?", memberID, patriotID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountLinks returns the size of a patriot's referrer set
func (p *PatriotRepository) CountLinks(ctx context.Context, db *gorm.DB, patriotID uint32) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&model.MemberPatriot{}).
		Where("patriot_id = ?", patriotID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UnlinkMember removes every link of a member and returns the patriot ids it held
func (p *PatriotRepository) UnlinkMember(ctx context.Context, db *gorm.DB, memberID uint32) ([]uint32, error) {
	var patriotIDs []uint32
	err := db.WithContext(ctx).
		Model(&model.MemberPatriot{}).
		Where("member_id = ?", memberID).
		Order("patriot_id").
		Pluck("patriot_id", &patriotIDs).Error
	if err != nil {
		return nil, err
	}

	if len(patriotIDs) == 0 {
		return patriotIDs, nil
	}

	err = db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Delete(&model.MemberPatriot{}).Error
	if err != nil {
		return nil, err
	}
	return patriotIDs, nil
}
