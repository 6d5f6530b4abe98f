package member

import (
	"strings"
	"time"

	"github.com/darregistry/member-registry/go-api-server/internal/model"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/validator"
)

// Result messages
const (
	MessagePatriotAssigned    = "existing patriot assigned"
	MessagePatriotCreated     = "new patriot created"
	MessagePatriotLinked      = "patriot assigned to member"
	MessagePatriotUnlinked    = "patriot unlinked from member, still assigned elsewhere"
	MessagePatriotDeleted     = "patriot unlinked from member and deleted"
	MessagePatriotRemoved     = "patriot deleted"
	MessageChapterAssigned    = "existing chapter assigned"
	MessageChapterCreated     = "new chapter created"
	MessageChapterReassigned  = "chapter assigned to member"
	MessageChapterUnchanged   = "chapter already assigned to member"
	MessageChapterDeleted     = "chapter deleted"
	MessageMemberDeleted      = "member deleted"
	MessageMemberChapterFreed = "member deleted, chapter deleted with its last member"
)

type MemberRequest struct {
	// ID selects the update path when present
	ID        *uint32 `json:"id,omitempty"`
	FirstName string  `json:"firstName" binding:"notblank,max=100"`
	LastName  string  `json:"lastName" binding:"notblank,max=100"`
	Address   string  `json:"address" binding:"max=255"`
	City      string  `json:"city" binding:"max=100"`
	State     string  `json:"state" binding:"max=50"`
	Zip       string  `json:"zip" binding:"max=20"`
	Phone     string  `json:"phone" binding:"notblank,max=50"`
	Email     string  `json:"email" binding:"omitempty,email,max=255"`
	Office    string  `json:"office" binding:"max=100"`
	Birthday  string  `json:"birthday" binding:"omitempty,isodate"`
	JoinDate  string  `json:"joinDate" binding:"omitempty,isodate"`
}

// apply overwrites every scalar field of member; relationship columns are left alone
func (r *MemberRequest) apply(member *model.Member) {
	member.FirstName = strings.TrimSpace(r.FirstName)
	member.LastName = strings.TrimSpace(r.LastName)
	member.Address = strings.TrimSpace(r.Address)
	member.City = strings.TrimSpace(r.City)
	member.State = strings.TrimSpace(r.State)
	member.Zip = strings.TrimSpace(r.Zip)
	member.Phone = strings.TrimSpace(r.Phone)
	member.Email = strings.TrimSpace(r.Email)
	member.Office = strings.TrimSpace(r.Office)
	member.Birthday = parseDate(r.Birthday)
	member.JoinDate = parseDate(r.JoinDate)
}

type PatriotRequest struct {
	FirstName   string `json:"firstName" binding:"notblank,max=100"`
	LastName    string `json:"lastName" binding:"notblank,max=100"`
	State       string `json:"state" binding:"max=50"`
	RankService string `json:"rankService" binding:"max=100"`
}

func (r *PatriotRequest) key() model.PatriotKey {
	return model.PatriotKey{
		FirstName:   strings.TrimSpace(r.FirstName),
		LastName:    strings.TrimSpace(r.LastName),
		State:       strings.TrimSpace(r.State),
		RankService: strings.TrimSpace(r.RankService),
	}
}

type ChapterRequest struct {
	Name   string `json:"name" binding:"notblank,max=150"`
	Number string `json:"number" binding:"notblank,max=50"`
}

func (r *ChapterRequest) key() model.ChapterKey {
	return model.ChapterKey{
		Name:   strings.TrimSpace(r.Name),
		Number: strings.TrimSpace(r.Number),
	}
}

type MemberResponse struct {
	ID        uint32           `json:"id"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Address   string           `json:"address,omitempty"`
	City      string           `json:"city,omitempty"`
	State     string           `json:"state,omitempty"`
	Zip       string           `json:"zip,omitempty"`
	Phone     string           `json:"phone"`
	Email     string           `json:"email,omitempty"`
	Office    string           `json:"office,omitempty"`
	Birthday  string           `json:"birthday,omitempty"`
	JoinDate  string           `json:"joinDate,omitempty"`
	Chapter   *ChapterResponse `json:"chapter"`
	Patriots  []PatriotResponse `json:"patriots"`
}

type PatriotResponse struct {
	ID          uint32 `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	State       string `json:"state"`
	RankService string `json:"rankService"`
}

type ChapterResponse struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

type PatriotAssignmentResponse struct {
	Message string          `json:"message"`
	Patriot PatriotResponse `json:"patriot"`
}

type ChapterAssignmentResponse struct {
	Message string          `json:"message"`
	Chapter ChapterResponse `json:"chapter"`
}

// UnassignPatriotResponse reports whether the unlink also deleted the patriot
type UnassignPatriotResponse struct {
	Message   string `json:"message"`
	MemberID  uint32 `json:"memberId"`
	PatriotID uint32 `json:"patriotId"`
	Deleted   bool   `json:"deleted"`
}

type DeletePatriotResponse struct {
	Message   string `json:"message"`
	PatriotID uint32 `json:"patriotId"`
}

type DeleteMemberResponse struct {
	Message        string  `json:"message"`
	MemberID       uint32  `json:"memberId"`
	ChapterDeleted bool    `json:"chapterDeleted"`
	// DeletedChapterID is set only when ChapterDeleted is true
	DeletedChapterID  *uint32  `json:"deletedChapterId,omitempty"`
	DeletedPatriotIDs []uint32 `json:"deletedPatriotIds"`
}

type DeleteChapterResponse struct {
	Message          string   `json:"message"`
	ChapterID        uint32   `json:"chapterId"`
	ClearedMemberIDs []uint32 `json:"clearedMemberIds"`
}

func toMemberResponse(member *model.Member, patriots []model.Patriot, chapter *model.Chapter) *MemberResponse {
	response := &MemberResponse{
		ID:        member.ID,
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Address:   member.Address,
		City:      member.City,
		State:     member.State,
		Zip:       member.Zip,
		Phone:     member.Phone,
		Email:     member.Email,
		Office:    member.Office,
		Birthday:  formatDate(member.Birthday),
		JoinDate:  formatDate(member.JoinDate),
		Patriots:  toPatriotResponses(patriots),
	}
	if chapter != nil {
		chapterResponse := toChapterResponse(chapter)
		response.Chapter = &chapterResponse
	}
	return response
}

func toPatriotResponse(patriot *model.Patriot) PatriotResponse {
	return PatriotResponse{
		ID:          patriot.ID,
		FirstName:   patriot.FirstName,
		LastName:    patriot.LastName,
		State:       patriot.State,
		RankService: patriot.RankService,
	}
}

func toPatriotResponses(patriots []model.Patriot) []PatriotResponse {
	responses := make([]PatriotResponse, 0, len(patriots))
	for i := range patriots {
		responses = append(responses, toPatriotResponse(&patriots[i]))
	}
	return responses
}

func toChapterResponse(chapter *model.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:     chapter.ID,
		Name:   chapter.Name,
		Number: chapter.Number,
	}
}

func toChapterResponses(chapters []model.Chapter) []ChapterResponse {
	responses := make([]ChapterResponse, 0, len(chapters))
	for i := range chapters {
		responses = append(responses, toChapterResponse(&chapters[i]))
	}
	return responses
}

// parseDate expects a value already checked by the isodate validator
func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(validator.DateLayout, value)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(validator.DateLayout)
}
