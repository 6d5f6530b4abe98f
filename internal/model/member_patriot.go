package model

import "time"

// MemberPatriot is one row of the member <-> patriot join table.
// The composite primary key makes a duplicate link impossible at the store level.
type MemberPatriot struct {
	MemberID  uint32    `gorm:"column:member_id;primaryKey;autoIncrement:false"`
	PatriotID uint32    `gorm:"column:patriot_id;primaryKey;autoIncrement:false;index:idx_member_patriot_patriot"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (*MemberPatriot) TableName() string {
	return "member_patriot"
}

// All returns every model in dependency order (referenced tables first)
func All() []interface{} {
	return []interface{}{
		&Chapter{},
		&Patriot{},
		&Member{},
		&MemberPatriot{},
	}
}
