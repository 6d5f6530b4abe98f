package member_test

import (
	"context"
	"testing"

	"github.com/darregistry/member-registry/go-api-server/internal/member"
	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liberty() *member.ChapterRequest {
	return &member.ChapterRequest{Name: "Liberty", Number: "001"}
}

func TestAssignOrCreateChapter_SecondChapterConflicts(t *testing.T) {
	// Given: Alice already in Liberty
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")

	assigned, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)

	// When: a different chapter is assigned
	_, err = e.chapters.AssignOrCreateChapter(ctx, alice.ID, &member.ChapterRequest{Name: "Concord", Number: "002"})

	// Then: conflict, original reference untouched, nothing created
	assert.ErrorIs(t, err, member.ErrMemberAlreadyHasChapter)
	assert.Equal(t, sharedError.KindConflict, sharedError.KindOf(err))

	current, err := e.chapters.GetChapterForMember(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, assigned.Chapter.ID, current.ID)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "chapter"))
}

func TestAssignOrCreateChapter_Errors(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")

	_, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID+1, liberty())
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	_, err = e.chapters.AssignOrCreateChapter(ctx, alice.ID, &member.ChapterRequest{Name: "Liberty", Number: " "})
	assert.ErrorIs(t, err, member.ErrInvalidChapter)

	_, err = e.chapters.AssignOrCreateChapter(ctx, alice.ID, nil)
	assert.ErrorIs(t, err, member.ErrInvalidChapter)
}

func TestReassignChapterToMember(t *testing.T) {
	// Given
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")

	libertyChapter, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)
	concord, err := e.chapters.AssignOrCreateChapter(ctx, bob.ID, &member.ChapterRequest{Name: "Concord", Number: "002"})
	require.NoError(t, err)

	// Same chapter is a no-op
	same, err := e.chapters.ReassignChapterToMember(ctx, alice.ID, libertyChapter.Chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, member.MessageChapterUnchanged, same.Message)

	// A different chapter conflicts
	_, err = e.chapters.ReassignChapterToMember(ctx, alice.ID, concord.Chapter.ID)
	assert.ErrorIs(t, err, member.ErrMemberAlreadyHasChapter)

	// Member without a chapter gets it
	carol := e.createMember(t, "Carol", "White", "555-4444")
	assigned, err := e.chapters.ReassignChapterToMember(ctx, carol.ID, concord.Chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, member.MessageChapterReassigned, assigned.Message)

	current, err := e.chapters.GetChapterForMember(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, concord.Chapter.ID, current.ID)

	_, err = e.chapters.ReassignChapterToMember(ctx, carol.ID, 999)
	assert.ErrorIs(t, err, member.ErrChapterNotFound)
}

func TestUpdateChapter_ScopedToMember(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")

	assigned, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)
	chapterID := assigned.Chapter.ID

	_, err = e.chapters.UpdateChapter(ctx, bob.ID, chapterID, &member.ChapterRequest{Name: "Liberty Bell", Number: "001"})
	assert.ErrorIs(t, err, member.ErrChapterNotLinked)
	assert.Equal(t, sharedError.KindForbidden, sharedError.KindOf(err))

	updated, err := e.chapters.UpdateChapter(ctx, alice.ID, chapterID, &member.ChapterRequest{Name: "Liberty Bell", Number: "001"})
	require.NoError(t, err)
	assert.Equal(t, "Liberty Bell", updated.Name)

	_, err = e.chapters.UpdateChapter(ctx, alice.ID, chapterID, &member.ChapterRequest{Name: "", Number: "001"})
	assert.ErrorIs(t, err, member.ErrInvalidChapter)
}

func TestUpdateUnassignedChapter(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")

	first, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)
	second, err := e.chapters.AssignOrCreateChapter(ctx, bob.ID, &member.ChapterRequest{Name: "Concord", Number: "002"})
	require.NoError(t, err)

	updated, err := e.chapters.UpdateUnassignedChapter(ctx, second.Chapter.ID, &member.ChapterRequest{Name: "Concord", Number: "003"})
	require.NoError(t, err)
	assert.Equal(t, "003", updated.Number)

	_, err = e.chapters.UpdateUnassignedChapter(ctx, second.Chapter.ID, &member.ChapterRequest{Name: "liberty", Number: "001"})
	assert.ErrorIs(t, err, member.ErrChapterAlreadyExists)

	_, err = e.chapters.UpdateUnassignedChapter(ctx, first.Chapter.ID+second.Chapter.ID, liberty())
	assert.ErrorIs(t, err, member.ErrChapterNotFound)
}

func TestAssignOrCreateChapter_AccentedNamesFoldCase(t *testing.T) {
	// Given: a chapter whose name carries non-ASCII letters
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")
	carol := e.createMember(t, "Carol", "White", "555-5555")

	created, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, &member.ChapterRequest{Name: "Société Française", Number: "Ⅶ"})
	require.NoError(t, err)

	// When: another member names it in a different case
	reused, err := e.chapters.AssignOrCreateChapter(ctx, bob.ID, &member.ChapterRequest{Name: "SOCIÉTÉ FRANÇAISE", Number: "ⅶ"})

	// Then: both members share the chapter
	require.NoError(t, err)
	assert.Equal(t, member.MessageChapterAssigned, reused.Message)
	assert.Equal(t, created.Chapter.ID, reused.Chapter.ID)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "chapter"))

	// And: renaming another chapter onto the folded key collides
	other, err := e.chapters.AssignOrCreateChapter(ctx, carol.ID, &member.ChapterRequest{Name: "Concord", Number: "002"})
	require.NoError(t, err)
	_, err = e.chapters.UpdateUnassignedChapter(ctx, other.Chapter.ID, &member.ChapterRequest{Name: "société française", Number: "Ⅶ"})
	assert.ErrorIs(t, err, member.ErrChapterAlreadyExists)
}

func TestDeleteChapterScopedToMember(t *testing.T) {
	// Given: Liberty shared by Alice and Bob
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")

	assigned, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)
	_, err = e.chapters.AssignOrCreateChapter(ctx, bob.ID, liberty())
	require.NoError(t, err)
	chapterID := assigned.Chapter.ID

	// When: Alice is not the sole referrer
	_, err = e.chapters.DeleteChapterScopedToMember(ctx, alice.ID, chapterID)

	// Then
	assert.ErrorIs(t, err, member.ErrChapterAssignedToOtherMember)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, "chapter"))

	// When: Bob leaves, Alice becomes the sole referrer
	_, err = e.members.DeleteMember(ctx, bob.ID)
	require.NoError(t, err)

	deleted, err := e.chapters.DeleteChapterScopedToMember(ctx, alice.ID, chapterID)

	// Then
	require.NoError(t, err)
	assert.Equal(t, []uint32{alice.ID}, deleted.ClearedMemberIDs)
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, "chapter"))

	_, err = e.chapters.GetChapterForMember(ctx, alice.ID)
	assert.ErrorIs(t, err, member.ErrChapterNotAssignedToMember)
}

func TestDeleteChapterUnconditionally_ClearsReferrers(t *testing.T) {
	// Given
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")

	assigned, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)
	_, err = e.chapters.AssignOrCreateChapter(ctx, bob.ID, liberty())
	require.NoError(t, err)

	// When
	deleted, err := e.chapters.DeleteChapterUnconditionally(ctx, assigned.Chapter.ID)

	// Then: no member keeps a dangling reference
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{alice.ID, bob.ID}, deleted.ClearedMemberIDs)

	for _, memberID := range []uint32{alice.ID, bob.ID} {
		found, err := e.members.RetrieveMember(ctx, memberID)
		require.NoError(t, err)
		assert.Nil(t, found.Chapter)
	}

	// The members can join a new chapter afterwards
	_, err = e.chapters.AssignOrCreateChapter(ctx, alice.ID, &member.ChapterRequest{Name: "Concord", Number: "002"})
	assert.NoError(t, err)

	_, err = e.chapters.DeleteChapterUnconditionally(ctx, assigned.Chapter.ID)
	assert.ErrorIs(t, err, member.ErrChapterNotFound)
}

func TestChapterReads(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")
	bob := e.createMember(t, "Bob", "Jones", "555-3333")

	assigned, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)
	concord, err := e.chapters.AssignOrCreateChapter(ctx, bob.ID, &member.ChapterRequest{Name: "Concord", Number: "002"})
	require.NoError(t, err)
	_, err = e.members.DeleteMember(ctx, bob.ID)
	require.NoError(t, err)

	all, err := e.chapters.GetAllChapters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "Concord went away with its only member")
	assert.Equal(t, assigned.Chapter.ID, all[0].ID)

	found, err := e.chapters.GetChapterByID(ctx, alice.ID, assigned.Chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, "Liberty", found.Name)

	_, err = e.chapters.GetChapterByID(ctx, alice.ID, concord.Chapter.ID)
	assert.ErrorIs(t, err, member.ErrChapterNotFound)

	_, err = e.chapters.GetChapterForMember(ctx, bob.ID)
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	unassigned, err := e.chapters.GetUnassignedChapters(ctx)
	require.NoError(t, err)
	assert.Empty(t, unassigned)
}

func TestGetUnassignedChapters(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	alice := e.createMember(t, "Alice", "Smith", "555-1111")

	assigned, err := e.chapters.AssignOrCreateChapter(ctx, alice.ID, liberty())
	require.NoError(t, err)

	// Freeing the reference leaves the chapter unassigned
	require.NoError(t, e.db.Exec("UPDATE member SET chapter_id = NULL WHERE id = ?", alice.ID).Error)

	unassigned, err := e.chapters.GetUnassignedChapters(ctx)
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	assert.Equal(t, assigned.Chapter.ID, unassigned[0].ID)
}

func TestDeleteAllChapters_Unsupported(t *testing.T) {
	e := newEngine(t)

	err := e.chapters.DeleteAllChapters(context.Background())

	assert.ErrorIs(t, err, member.ErrChapterBulkDelete)
	assert.Equal(t, sharedError.KindUnsupported, sharedError.KindOf(err))
}
