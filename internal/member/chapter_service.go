package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darregistry/member-registry/go-api-server/internal/model"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/logger"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/metrics"
	"gorm.io/gorm"
)

// ChapterService manages member.chapter_id and chapter lifecycles.
// Locks are always taken member first, chapter second.
type ChapterService struct {
	db                *gorm.DB
	memberRepository  *MemberRepository
	chapterRepository *ChapterRepository
	metrics           *metrics.Recorder
}

func NewChapterService(
	db *gorm.DB,
	memberRepository *MemberRepository,
	chapterRepository *ChapterRepository,
	recorder *metrics.Recorder,
) *ChapterService {
	return &ChapterService{
		db:                db,
		memberRepository:  memberRepository,
		chapterRepository: chapterRepository,
		metrics:           recorder,
	}
}

// AssignOrCreateChapter sets the member's chapter to the lowest-id match of (name, number),
// creating the chapter when nothing matches. Fails when the member already has a chapter.
func (s *ChapterService) AssignOrCreateChapter(ctx context.Context, memberID uint32, request *ChapterRequest) (response *ChapterAssignmentResponse, err error) {
	defer s.metrics.Observe("assign_or_create_chapter", time.Now(), &err)
	ctx, log := logger.With(ctx, "memberID", memberID)

	if err := s.validate(request); err != nil {
		return nil, err
	}
	key := request.key()

	outcome := ""
	multipleMatches := false
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// 1. Lock the member and reject a second chapter
		member, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID)
		if err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		if member.HasChapter() {
			return fmt.Errorf("memberID=%d chapterID=%d: %w", memberID, *member.ChapterID, ErrMemberAlreadyHasChapter)
		}

		// 2. Reuse a matching chapter, holding its lock so a concurrent delete cannot remove it
		chapter, multiple, err := s.lockMatching(ctx, tx, key)
		multipleMatches = multiple
		if err != nil {
			return err
		}

		if chapter != nil {
			outcome = "reused"
			response = &ChapterAssignmentResponse{Message: MessageChapterAssigned}
		} else {
			chapter = model.NewChapter(key)
			if err := s.chapterRepository.Create(ctx, tx, chapter); err != nil {
				log.Error("Failed to create chapter", "error", err)
				return fmt.Errorf("create chapter: %w", err)
			}
			outcome = "created"
			response = &ChapterAssignmentResponse{Message: MessageChapterCreated}
		}

		// 3. Point the member at it
		if err := s.memberRepository.SetChapter(ctx, tx, memberID, &chapter.ID); err != nil {
			return fmt.Errorf("set member chapter: %w", err)
		}

		response.Chapter = toChapterResponse(chapter)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if multipleMatches {
		s.metrics.Event(metrics.EntityChapter, "dedup", "multiple_matches")
	}
	s.metrics.Event(metrics.EntityChapter, "assign", outcome)
	log.Info("Chapter assigned", "chapterID", response.Chapter.ID, "outcome", outcome)
	return response, nil
}

// ReassignChapterToMember points the member at an existing chapter.
// Same chapter is a no-op; a different current chapter is a conflict.
func (s *ChapterService) ReassignChapterToMember(ctx context.Context, memberID, chapterID uint32) (response *ChapterAssignmentResponse, err error) {
	defer s.metrics.Observe("reassign_chapter_to_member", time.Now(), &err)

	changed := false
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID)
		if err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		chapter, err := s.chapterRepository.FindByIDForUpdate(ctx, tx, chapterID)
		if err != nil {
			return lookupError(err, ErrChapterNotFound, "chapter", chapterID)
		}

		response = &ChapterAssignmentResponse{
			Message: MessageChapterUnchanged,
			Chapter: toChapterResponse(chapter),
		}

		if member.HasChapter() {
			if *member.ChapterID == chapterID {
				return nil
			}
			return fmt.Errorf("memberID=%d chapterID=%d: %w", memberID, *member.ChapterID, ErrMemberAlreadyHasChapter)
		}

		if err := s.memberRepository.SetChapter(ctx, tx, memberID, &chapterID); err != nil {
			return fmt.Errorf("set member chapter: %w", err)
		}
		changed = true
		response.Message = MessageChapterReassigned
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.Event(metrics.EntityChapter, "assign", "linked")
	}
	return response, nil
}

// UpdateChapter overwrites the chapter the member references
func (s *ChapterService) UpdateChapter(ctx context.Context, memberID, chapterID uint32, request *ChapterRequest) (response *ChapterResponse, err error) {
	defer s.metrics.Observe("update_chapter", time.Now(), &err)

	if err := s.validate(request); err != nil {
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindByID(ctx, tx, memberID)
		if err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		chapter, err := s.chapterRepository.FindByIDForUpdate(ctx, tx, chapterID)
		if err != nil {
			return lookupError(err, ErrChapterNotFound, "chapter", chapterID)
		}
		if !member.HasChapter() || *member.ChapterID != chapterID {
			return fmt.Errorf("memberID=%d chapterID=%d: %w", memberID, chapterID, ErrChapterNotLinked)
		}

		response, err = s.overwrite(ctx, tx, chapter, request.key())
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// UpdateUnassignedChapter overwrites any chapter by id
func (s *ChapterService) UpdateUnassignedChapter(ctx context.Context, chapterID uint32, request *ChapterRequest) (response *ChapterResponse, err error) {
	defer s.metrics.Observe("update_unassigned_chapter", time.Now(), &err)

	if err := s.validate(request); err != nil {
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		chapter, err := s.chapterRepository.FindByIDForUpdate(ctx, tx, chapterID)
		if err != nil {
			return lookupError(err, ErrChapterNotFound, "chapter", chapterID)
		}

		response, err = s.overwrite(ctx, tx, chapter, request.key())
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// DeleteChapterScopedToMember deletes the chapter only when the member is its sole referrer
func (s *ChapterService) DeleteChapterScopedToMember(ctx context.Context, memberID, chapterID uint32) (response *DeleteChapterResponse, err error) {
	defer s.metrics.Observe("delete_chapter_scoped_to_member", time.Now(), &err)
	ctx, log := logger.With(ctx, "memberID", memberID)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// 1. Lock member then chapter
		if _, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		if _, err := s.chapterRepository.FindByIDForUpdate(ctx, tx, chapterID); err != nil {
			return lookupError(err, ErrChapterNotFound, "chapter", chapterID)
		}

		// 2. Sole-referrer check runs under the chapter lock
		referrers, err := s.memberRepository.FindIDsByChapterID(ctx, tx, chapterID)
		if err != nil {
			return fmt.Errorf("find chapter referrers: %w", err)
		}
		if len(referrers) != 1 || referrers[0] != memberID {
			log.Warn("Chapter is not solely held by member", "chapterID", chapterID, "referrers", referrers)
			return fmt.Errorf("memberID=%d chapterID=%d referrers=%d: %w", memberID, chapterID, len(referrers), ErrChapterAssignedToOtherMember)
		}

		// 3. Clear the reference and delete
		if err := s.memberRepository.SetChapter(ctx, tx, memberID, nil); err != nil {
			return fmt.Errorf("clear member chapter: %w", err)
		}
		if err := s.chapterRepository.Delete(ctx, tx, chapterID); err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}

		response = &DeleteChapterResponse{
			Message:          MessageChapterDeleted,
			ChapterID:        chapterID,
			ClearedMemberIDs: referrers,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Event(metrics.EntityChapter, "delete", "scoped")
	log.Info("Chapter deleted", "chapterID", chapterID)
	return response, nil
}

// DeleteChapterUnconditionally deletes the chapter and clears chapter_id on every referrer
func (s *ChapterService) DeleteChapterUnconditionally(ctx context.Context, chapterID uint32) (response *DeleteChapterResponse, err error) {
	defer s.metrics.Observe("delete_chapter_unconditionally", time.Now(), &err)
	log := logger.FromContext(ctx)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// 1. Members before chapter, matching the order of every other path
		if _, err := s.memberRepository.LockByChapterID(ctx, tx, chapterID); err != nil {
			return fmt.Errorf("lock chapter referrers: %w", err)
		}
		if _, err := s.chapterRepository.FindByIDForUpdate(ctx, tx, chapterID); err != nil {
			return lookupError(err, ErrChapterNotFound, "chapter", chapterID)
		}

		// 2. Referrer set is stable once the chapter is locked
		referrers, err := s.memberRepository.FindIDsByChapterID(ctx, tx, chapterID)
		if err != nil {
			return fmt.Errorf("find chapter referrers: %w", err)
		}
		if _, err := s.memberRepository.ClearChapter(ctx, tx, chapterID); err != nil {
			return fmt.Errorf("clear chapter referrers: %w", err)
		}
		if err := s.chapterRepository.Delete(ctx, tx, chapterID); err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}

		response = &DeleteChapterResponse{
			Message:          MessageChapterDeleted,
			ChapterID:        chapterID,
			ClearedMemberIDs: referrers,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Event(metrics.EntityChapter, "delete", "unconditional")
	log.Info("Chapter deleted unconditionally", "chapterID", chapterID, "clearedMembers", len(response.ClearedMemberIDs))
	return response, nil
}

func (s *ChapterService) DeleteAllChapters(ctx context.Context) (err error) {
	defer s.metrics.Observe("delete_all_chapters", time.Now(), &err)
	logger.FromContext(ctx).Warn("Rejected request to delete all chapters")
	return fmt.Errorf("delete all chapters: %w", ErrChapterBulkDelete)
}

func (s *ChapterService) GetAllChapters(ctx context.Context) ([]ChapterResponse, error) {
	chapters, err := s.chapterRepository.FindAll(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("find chapters: %w", err)
	}
	return toChapterResponses(chapters), nil
}

func (s *ChapterService) GetUnassignedChapters(ctx context.Context) ([]ChapterResponse, error) {
	chapters, err := s.chapterRepository.FindUnassigned(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("find unassigned chapters: %w", err)
	}
	return toChapterResponses(chapters), nil
}

func (s *ChapterService) GetChapterForMember(ctx context.Context, memberID uint32) (response *ChapterResponse, err error) {
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindByID(ctx, tx, memberID)
		if err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		if !member.HasChapter() {
			return fmt.Errorf("memberID=%d: %w", memberID, ErrChapterNotAssignedToMember)
		}

		chapter, err := s.chapterRepository.FindByID(ctx, tx, *member.ChapterID)
		if err != nil {
			return lookupError(err, ErrChapterNotFound, "chapter", *member.ChapterID)
		}
		result := toChapterResponse(chapter)
		response = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// GetChapterByID returns the chapter only when it is the member's chapter
func (s *ChapterService) GetChapterByID(ctx context.Context, memberID, chapterID uint32) (response *ChapterResponse, err error) {
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindByID(ctx, tx, memberID)
		if err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		chapter, err := s.chapterRepository.FindByID(ctx, tx, chapterID)
		if err != nil {
			return lookupError(err, ErrChapterNotFound, "chapter", chapterID)
		}
		if !member.HasChapter() || *member.ChapterID != chapterID {
			return fmt.Errorf("memberID=%d chapterID=%d: %w", memberID, chapterID, ErrChapterNotAssignedToMember)
		}

		result := toChapterResponse(chapter)
		response = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *ChapterService) validate(request *ChapterRequest) error {
	if request == nil {
		return fmt.Errorf("chapter data is required %w", ErrInvalidChapter)
	}
	return validateRequest(request, ErrInvalidChapter)
}

// lockMatching locks the lowest-id chapter matching key, or returns nil when none survives.
// multiple reports that more than one chapter shared the key.
func (s *ChapterService) lockMatching(ctx context.Context, tx *gorm.DB, key model.ChapterKey) (chapter *model.Chapter, multiple bool, err error) {
	matches, err := s.chapterRepository.FindMatching(ctx, tx, key)
	if err != nil {
		return nil, false, fmt.Errorf("find matching chapters: %w", err)
	}
	multiple = len(matches) > 1
	if multiple {
		logger.FromContext(ctx).Warn("Multiple chapters share a natural key, using lowest id",
			"chapterID", matches[0].ID, "matches", len(matches))
	}

	for _, match := range matches {
		chapter, err = s.chapterRepository.FindByIDForUpdate(ctx, tx, match.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, multiple, fmt.Errorf("lock chapter id=%d: %w", match.ID, err)
		}
		return chapter, multiple, nil
	}
	return nil, multiple, nil
}

// overwrite replaces name and number unless another chapter already holds the new key
func (s *ChapterService) overwrite(ctx context.Context, tx *gorm.DB, chapter *model.Chapter, key model.ChapterKey) (*ChapterResponse, error) {
	matches, err := s.chapterRepository.FindMatching(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("find matching chapters: %w", err)
	}
	for _, match := range matches {
		if match.ID != chapter.ID {
			return nil, fmt.Errorf("chapterID=%d: %w", match.ID, ErrChapterAlreadyExists)
		}
	}

	chapter.Name = key.Name
	chapter.Number = key.Number
	if err := s.chapterRepository.Save(ctx, tx, chapter); err != nil {
		return nil, fmt.Errorf("save chapter: %w", err)
	}

	response := toChapterResponse(chapter)
	return &response, nil
}
