package member_test

import (
	"context"
	"sync"
	"testing"

	"github.com/darregistry/member-registry/go-api-server/internal/member"
	"github.com/darregistry/member-registry/go-api-server/internal/model"
	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/metrics"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type engine struct {
	db       *gorm.DB
	recorder *metrics.Recorder
	members  *member.MemberService
	patriots *member.PatriotService
	chapters *member.ChapterService
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	return newEngineOn(t, testutil.SetupTestDB(t))
}

// newEngineOn wires the services over db; concurrency tests pass a file-backed database
func newEngineOn(t *testing.T, db *gorm.DB) *engine {
	t.Helper()

	recorder := metrics.NewRecorder("test")

	memberRepo := member.NewMemberRepository()
	patriotRepo := member.NewPatriotRepository()
	chapterRepo := member.NewChapterRepository()

	return &engine{
		db:       db,
		recorder: recorder,
		members:  member.NewMemberService(db, memberRepo, patriotRepo, chapterRepo, recorder),
		patriots: member.NewPatriotService(db, memberRepo, patriotRepo, recorder),
		chapters: member.NewChapterService(db, memberRepo, chapterRepo, recorder),
	}
}

func (e *engine) createMember(t *testing.T, firstName, lastName, phone string) *member.MemberResponse {
	t.Helper()

	response, err := e.members.CreateOrUpdateMember(context.Background(), &member.MemberRequest{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
	})
	require.NoError(t, err)
	return response
}

func georgeWashington() *member.PatriotRequest {
	return &member.PatriotRequest{
		FirstName:   "George",
		LastName:    "Washington",
		State:       "VA",
		RankService: "Colonel",
	}
}

func TestCreateOrUpdateMember_Create(t *testing.T) {
	// Given
	e := newEngine(t)

	// When
	response, err := e.members.CreateOrUpdateMember(context.Background(), &member.MemberRequest{
		FirstName: "  Alice ",
		LastName:  "Smith",
		Phone:     "555-1111",
		Email:     "alice@example.com",
		Birthday:  "1980-04-12",
	})

	// Then
	require.NoError(t, err)
	assert.NotZero(t, response.ID)
	assert.Equal(t, "Alice", response.FirstName)
	assert.Equal(t, "1980-04-12", response.Birthday)
	assert.Empty(t, response.Patriots)
	assert.Nil(t, response.Chapter)
}

func TestCreateOrUpdateMember_AuditColumns(t *testing.T) {
	// Given
	e := newEngine(t)

	// When
	created := e.createMember(t, "Alice", "Smith", "555-1111")

	// Then: timestamps are managed, actor columns stay empty
	var stored model.Member
	require.NoError(t, e.db.First(&stored, created.ID).Error)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.False(t, stored.UpdatedAt.IsZero())
	assert.Nil(t, stored.CreatedBy)
	assert.Nil(t, stored.UpdatedBy)
}

func TestCreateOrUpdateMember_ValidationError(t *testing.T) {
	e := newEngine(t)

	testCases := []struct {
		name    string
		request *member.MemberRequest
	}{
		{name: "nil payload", request: nil},
		{name: "blank first name", request: &member.MemberRequest{FirstName: "  ", LastName: "Smith", Phone: "555-1111"}},
		{name: "missing last name", request: &member.MemberRequest{FirstName: "Alice", Phone: "555-1111"}},
		{name: "blank phone", request: &member.MemberRequest{FirstName: "Alice", LastName: "Smith", Phone: "\t"}},
		{name: "bad birthday", request: &member.MemberRequest{FirstName: "Alice", LastName: "Smith", Phone: "555-1111", Birthday: "12/04/1980"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.members.CreateOrUpdateMember(context.Background(), tc.request)

			assert.ErrorIs(t, err, member.ErrInvalidMember)
			assert.Equal(t, sharedError.KindValidation, sharedError.KindOf(err))
		})
	}

	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "member"))
}

func TestCreateOrUpdateMember_UpdateKeepsRelationships(t *testing.T) {
	// Given: a member with a patriot and a chapter
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")

	_, err := e.patriots.AssignOrCreatePatriot(ctx, alice.ID, georgeWashington())
	require.NoError(t, err)
	_, err = e.chapters.AssignOrCreateChapter(ctx, alice.ID, &member.ChapterRequest{Name: "Liberty", Number: "001"})
	require.NoError(t, err)

	// When: full replace of the scalar fields
	updated, err := e.members.CreateOrUpdateMember(ctx, &member.MemberRequest{
		ID:        &alice.ID,
		FirstName: "Alicia",
		LastName:  "Smith",
		Phone:     "555-2222",
	})

	// Then
	require.NoError(t, err)
	assert.Equal(t, alice.ID, updated.ID)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "555-2222", updated.Phone)
	assert.Len(t, updated.Patriots, 1)
	require.NotNil(t, updated.Chapter)
	assert.Equal(t, "Liberty", updated.Chapter.Name)
}

func TestCreateOrUpdateMember_UpdateMissing(t *testing.T) {
	e := newEngine(t)
	missing := uint32(404)

	_, err := e.members.CreateOrUpdateMember(context.Background(), &member.MemberRequest{
		ID:        &missing,
		FirstName: "Alice",
		LastName:  "Smith",
		Phone:     "555-1111",
	})

	assert.ErrorIs(t, err, member.ErrMemberNotFound)
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "member"))
}

func TestRetrieveMember(t *testing.T) {
	e := newEngine(t)
	alice := e.createMember(t, "Alice", "Smith", "555-1111")

	found, err := e.members.RetrieveMember(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = e.members.RetrieveMember(context.Background(), alice.ID+1)
	assert.ErrorIs(t, err, member.ErrMemberNotFound)
}

func TestRetrieveAllMembers(t *testing.T) {
	// Given
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")

	_, err := e.patriots.AssignOrCreatePatriot(ctx, alice.ID, georgeWashington())
	require.NoError(t, err)
	_, err = e.chapters.AssignOrCreateChapter(ctx, bob.ID, &member.ChapterRequest{Name: "Liberty", Number: "001"})
	require.NoError(t, err)

	// When
	all, err := e.members.RetrieveAllMembers(ctx)

	// Then
	require.NoError(t, err)
	require.Len(t, all, 2)

	byID := map[uint32]member.MemberResponse{}
	for _, m := range all {
		byID[m.ID] = m
	}
	assert.Len(t, byID[alice.ID].Patriots, 1)
	assert.Nil(t, byID[alice.ID].Chapter)
	assert.Empty(t, byID[bob.ID].Patriots)
	require.NotNil(t, byID[bob.ID].Chapter)
	assert.Equal(t, "001", byID[bob.ID].Chapter.Number)
}

func TestDeleteMember_NotFound(t *testing.T) {
	e := newEngine(t)

	_, err := e.members.DeleteMember(context.Background(), 1)

	assert.ErrorIs(t, err, member.ErrMemberNotFound)
	assert.Equal(t, sharedError.KindNotFound, sharedError.KindOf(err))
}

func TestDeleteMember_SharedChapterScenario(t *testing.T) {
	// Given: two members assigned the same (name, number) chapter
	e := newEngine(t)
	ctx := context.Background()
	a := e.createMember(t, "Alice", "Smith", "555-1111")
	b := e.createMember(t, "Bob", "Jones", "555-3333")

	first, err := e.chapters.AssignOrCreateChapter(ctx, a.ID, &member.ChapterRequest{Name: "Liberty", Number: "001"})
	require.NoError(t, err)
	assert.Equal(t, member.MessageChapterCreated, first.Message)

	second, err := e.chapters.AssignOrCreateChapter(ctx, b.ID, &member.ChapterRequest{Name: "LIBERTY", Number: "001"})
	require.NoError(t, err)
	assert.Equal(t, member.MessageChapterAssigned, second.Message)
	assert.Equal(t, first.Chapter.ID, second.Chapter.ID)

	// When: deleting A leaves the chapter to B
	deletedA, err := e.members.DeleteMember(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, deletedA.ChapterDeleted)
	assert.Nil(t, deletedA.DeletedChapterID)

	chapter, err := e.chapters.GetChapterForMember(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Chapter.ID, chapter.ID)

	// Then: deleting B, the sole referrer, deletes the chapter
	deletedB, err := e.members.DeleteMember(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, deletedB.ChapterDeleted)
	require.NotNil(t, deletedB.DeletedChapterID)
	assert.Equal(t, first.Chapter.ID, *deletedB.DeletedChapterID)
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "chapter"))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(e.recorder.EventCounter(metrics.EntityChapter, "delete", "cascade")))
}

func TestDeleteMember_ConcurrentSoleReferrers(t *testing.T) {
	// Given: several members in one chapter on a database with several open connections
	e := newEngineOn(t, testutil.SetupFileTestDB(t))
	ctx := context.Background()

	const members = 6
	ids := make([]uint32, 0, members)
	var chapterID uint32
	for i := 0; i < members; i++ {
		m := e.createMember(t, "Member", "Shared", "555-0000")
		assigned, err := e.chapters.AssignOrCreateChapter(ctx, m.ID, liberty())
		require.NoError(t, err)
		chapterID = assigned.Chapter.ID
		ids = append(ids, m.ID)
	}

	// When: every member is deleted at once
	var wg sync.WaitGroup
	results := make(chan *member.DeleteMemberResponse, members)
	errs := make(chan error, members)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			response, err := e.members.DeleteMember(context.Background(), id)
			if err != nil {
				errs <- err
				return
			}
			results <- response
		}(id)
	}
	wg.Wait()
	close(results)
	close(errs)

	// Then: exactly one deletion saw itself as the last referrer and removed the chapter
	for err := range errs {
		require.NoError(t, err)
	}

	cascades := 0
	for response := range results {
		if response.ChapterDeleted {
			cascades++
			require.NotNil(t, response.DeletedChapterID)
			assert.Equal(t, chapterID, *response.DeletedChapterID)
		}
	}
	assert.Equal(t, 1, cascades)
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "member"))
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "chapter"))
}

func TestDeleteMember_RacesChapterReuse(t *testing.T) {
	// Given: Alice is Liberty's only member
	e := newEngineOn(t, testutil.SetupFileTestDB(t))
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")
	_, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)

	// When: Alice is deleted while Bob joins Liberty
	var wg sync.WaitGroup
	var deleteErr, assignErr error
	var assigned *member.ChapterAssignmentResponse
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, deleteErr = e.members.DeleteMember(context.Background(), alice.ID)
	}()
	go func() {
		defer wg.Done()
		assigned, assignErr = e.chapters.AssignOrCreateChapter(context.Background(), bob.ID, liberty())
	}()
	wg.Wait()

	// Then: whichever ran first, Bob references a chapter that exists
	require.NoError(t, deleteErr)
	require.NoError(t, assignErr)

	current, err := e.chapters.GetChapterForMember(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, assigned.Chapter.ID, current.ID)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "chapter"))
}

func TestDeleteMember_RemovesOrphanedPatriots(t *testing.T) {
	// Given: a patriot shared by A and B, and one only A holds
	e := newEngine(t)
	ctx := context.Background()
	a := e.createMember(t, "Alice", "Smith", "555-1111")
	b := e.createMember(t, "Bob", "Jones", "555-3333")

	shared, err := e.patriots.AssignOrCreatePatriot(ctx, a.ID, georgeWashington())
	require.NoError(t, err)
	_, err = e.patriots.AssignOrCreatePatriot(ctx, b.ID, georgeWashington())
	require.NoError(t, err)
	own, err := e.patriots.AssignOrCreatePatriot(ctx, a.ID, &member.PatriotRequest{FirstName: "Nathan", LastName: "Hale", State: "CT", RankService: "Captain"})
	require.NoError(t, err)

	// When
	deleted, err := e.members.DeleteMember(ctx, a.ID)

	// Then
	require.NoError(t, err)
	assert.Equal(t, []uint32{own.Patriot.ID}, deleted.DeletedPatriotIDs)

	remaining, err := e.patriots.GetAllPatriots(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, shared.Patriot.ID, remaining[0].ID)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "member_patriot"))
}
