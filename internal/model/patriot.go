package model

// Patriot is a historical-ancestor record shared by any number of members.
// (FirstName, LastName, State, RankService) compared case-insensitively is its natural key;
// MatchKey stores its folded form so lookups do not depend on the database's LOWER().
type Patriot struct {
	ID uint32 `gorm:"column:id;primaryKey;autoIncrement"`

	FirstName   string `gorm:"column:first_name;size:100;not null"`
	LastName    string `gorm:"column:last_name;size:100;not null"`
	State       string `gorm:"column:state;size:50"`
	RankService string `gorm:"column:rank_service;size:100"`

	MatchKey string `gorm:"column:match_key;size:400;not null;index:idx_patriot_match_key"`

	BaseEntity
}

func (*Patriot) TableName() string {
	return "patriot"
}

// Key returns the natural key of the stored fields
func (p *Patriot) Key() PatriotKey {
	return PatriotKey{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		State:       p.State,
		RankService: p.RankService,
	}
}

// RefreshMatchKey recomputes MatchKey from the current natural key fields
func (p *Patriot) RefreshMatchKey() {
	p.MatchKey = p.Key().MatchKey()
}

// PatriotKey is the natural key used for deduplication
type PatriotKey struct {
	FirstName   string
	LastName    string
	State       string
	RankService string
}

// MatchKey is the case-folded form compared against the match_key column
func (k PatriotKey) MatchKey() string {
	return foldKey(k.FirstName, k.LastName, k.State, k.RankService)
}

// NewPatriot creates a patriot from its natural key fields
func NewPatriot(key PatriotKey) *Patriot {
	return &Patriot{
		FirstName:   key.FirstName,
		LastName:    key.LastName,
		State:       key.State,
		RankService: key.RankService,
		MatchKey:    key.MatchKey(),
	}
}
