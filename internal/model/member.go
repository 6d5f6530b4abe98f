package model

import "time"

// Member is the primary organizational record.
// Patriot links live in member_patriot; the chapter link is the nullable ChapterID column.
type Member struct {
	// Primary key - IDENTITY (auto-increment)
	ID uint32 `gorm:"column:id;primaryKey;autoIncrement"`

	FirstName string     `gorm:"column:first_name;size:100;not null"`
	LastName  string     `gorm:"column:last_name;size:100;not null"`
	Address   string     `gorm:"column:address;size:255"`
	City      string     `gorm:"column:city;size:100"`
	State     string     `gorm:"column:state;size:50"`
	Zip       string     `gorm:"column:zip;size:20"`
	Phone     string     `gorm:"column:phone;size:50;not null"`
	Email     string     `gorm:"column:email;size:255"`
	Office    string     `gorm:"column:office;size:100"`
	Birthday  *time.Time `gorm:"column:birthday;type:date"`
	JoinDate  *time.Time `gorm:"column:join_date;type:date"`

	// Relationship - nullable, indexed for referrer counts
	ChapterID *uint32 `gorm:"column:chapter_id;index:idx_member_chapter"`

	BaseEntity
}

// TableName specifies the table name for Member
func (*Member) TableName() string {
	return "member"
}

// HasChapter reports whether the member currently references a chapter
func (m *Member) HasChapter() bool {
	return m.ChapterID != nil
}
