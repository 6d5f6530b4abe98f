package model

// Chapter is an organizational unit. (Name, Number) compared case-insensitively is its natural key,
// stored folded in MatchKey.
type Chapter struct {
	ID uint32 `gorm:"column:id;primaryKey;autoIncrement"`

	Name   string `gorm:"column:name;size:150;not null"`
	Number string `gorm:"column:number;size:50;not null"`

	MatchKey string `gorm:"column:match_key;size:250;not null;index:idx_chapter_match_key"`

	BaseEntity
}

func (*Chapter) TableName() string {
	return "chapter"
}

func (c *Chapter) Key() ChapterKey {
	return ChapterKey{Name: c.Name, Number: c.Number}
}

// RefreshMatchKey recomputes MatchKey from Name and Number
func (c *Chapter) RefreshMatchKey() {
	c.MatchKey = c.Key().MatchKey()
}

// ChapterKey is the natural key used for deduplication
type ChapterKey struct {
	Name   string
	Number string
}

func (k ChapterKey) MatchKey() string {
	return foldKey(k.Name, k.Number)
}

func NewChapter(key ChapterKey) *Chapter {
	return &Chapter{
		Name:     key.Name,
		Number:   key.Number,
		MatchKey: key.MatchKey(),
	}
}
