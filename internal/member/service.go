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

type MemberService struct {
	db                *gorm.DB
	memberRepository  *MemberRepository
	patriotRepository *PatriotRepository
	chapterRepository *ChapterRepository
	metrics           *metrics.Recorder
}

func NewMemberService(
	db *gorm.DB,
	memberRepository *MemberRepository,
	patriotRepository *PatriotRepository,
	chapterRepository *ChapterRepository,
	recorder *metrics.Recorder,
) *MemberService {
	return &MemberService{
		db:                db,
		memberRepository:  memberRepository,
		patriotRepository: patriotRepository,
		chapterRepository: chapterRepository,
		metrics:           recorder,
	}
}

// CreateOrUpdateMember inserts a new member when request.ID is nil, otherwise fully replaces
// the scalar fields of the existing member. Patriot links and the chapter reference are kept.
func (s *MemberService) CreateOrUpdateMember(ctx context.Context, request *MemberRequest) (response *MemberResponse, err error) {
	defer s.metrics.Observe("create_or_update_member", time.Now(), &err)
	log := logger.FromContext(ctx)

	if request == nil {
		return nil, fmt.Errorf("member data is required %w", ErrInvalidMember)
	}
	if err := validateRequest(request, ErrInvalidMember); err != nil {
		log.Warn("Invalid member payload", "error", err)
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// 1. Resolve the target record
		member := &model.Member{}
		if request.ID != nil {
			existing, err := s.memberRepository.FindByIDForUpdate(ctx, tx, *request.ID)
			if err != nil {
				return lookupError(err, ErrMemberNotFound, "member", *request.ID)
			}
			member = existing
		}

		// 2. Overwrite scalars and persist
		request.apply(member)
		if err := s.memberRepository.Save(ctx, tx, member); err != nil {
			log.Error("Failed to save member", "error", err)
			return fmt.Errorf("save member: %w", err)
		}

		// 3. Project with current relationships
		response, err = s.project(ctx, tx, member)
		return err
	})
	if err != nil {
		return nil, err
	}

	action := "create"
	if request.ID != nil {
		action = "update"
	}
	s.metrics.Event(metrics.EntityMember, action, "ok")
	log.Info("Member saved",
		"memberID", response.ID,
		"action", action,
		"phone", logger.MaskPhone(response.Phone),
		"email", logger.MaskEmail(response.Email),
	)
	return response, nil
}

func (s *MemberService) RetrieveMember(ctx context.Context, memberID uint32) (response *MemberResponse, err error) {
	defer s.metrics.Observe("retrieve_member", time.Now(), &err)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		member, err := s.memberRepository.FindByID(ctx, tx, memberID)
		if err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}

		response, err = s.project(ctx, tx, member)
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// RetrieveAllMembers loads every member with its relationships in three queries
func (s *MemberService) RetrieveAllMembers(ctx context.Context) (responses []MemberResponse, err error) {
	defer s.metrics.Observe("retrieve_all_members", time.Now(), &err)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		members, err := s.memberRepository.FindAll(ctx, tx)
		if err != nil {
			return fmt.Errorf("find members: %w", err)
		}

		memberIDs := make([]uint32, 0, len(members))
		chapterIDs := make([]uint32, 0, len(members))
		for _, member := range members {
			memberIDs = append(memberIDs, member.ID)
			if member.HasChapter() {
				chapterIDs = append(chapterIDs, *member.ChapterID)
			}
		}

		patriots, err := s.patriotRepository.FindByMemberIDs(ctx, tx, memberIDs)
		if err != nil {
			return fmt.Errorf("find patriots by members: %w", err)
		}
		chapters, err := s.chapterRepository.FindByIDs(ctx, tx, chapterIDs)
		if err != nil {
			return fmt.Errorf("find chapters: %w", err)
		}

		responses = make([]MemberResponse, 0, len(members))
		for i := range members {
			var chapter *model.Chapter
			if members[i].HasChapter() {
				if found, ok := chapters[*members[i].ChapterID]; ok {
					chapter = &found
				}
			}
			responses = append(responses, *toMemberResponse(&members[i], patriots[members[i].ID], chapter))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// DeleteMember hard-deletes the member together with its links.
// The chapter is deleted when the member was its sole referrer, and every patriot
// left without members is deleted as well.
func (s *MemberService) DeleteMember(ctx context.Context, memberID uint32) (response *DeleteMemberResponse, err error) {
	defer s.metrics.Observe("delete_member", time.Now(), &err)
	ctx, log := logger.With(ctx, "memberID", memberID)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// 1. Lock the member
		member, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID)
		if err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}

		response = &DeleteMemberResponse{
			Message:           MessageMemberDeleted,
			MemberID:          memberID,
			DeletedPatriotIDs: []uint32{},
		}

		// 2. Decide the chapter cascade while holding the chapter lock
		soleReferrer := false
		if member.HasChapter() {
			_, err := s.chapterRepository.FindByIDForUpdate(ctx, tx, *member.ChapterID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				log.Warn("Member references a missing chapter", "chapterID", *member.ChapterID)
			case err != nil:
				return fmt.Errorf("lock chapter: %w", err)
			default:
				referrers, err := s.memberRepository.CountByChapterID(ctx, tx, *member.ChapterID)
				if err != nil {
					return fmt.Errorf("count chapter referrers: %w", err)
				}
				soleReferrer = referrers == 1
			}
		}

		// 3. Drop patriot links, deleting patriots that lost their last member
		patriotIDs, err := s.patriotRepository.UnlinkMember(ctx, tx, memberID)
		if err != nil {
			return fmt.Errorf("unlink patriots: %w", err)
		}
		for _, patriotID := range patriotIDs {
			if _, err := s.patriotRepository.FindByIDForUpdate(ctx, tx, patriotID); err != nil {
				return fmt.Errorf("lock patriot id=%d: %w", patriotID, err)
			}
			links, err := s.patriotRepository.CountLinks(ctx, tx, patriotID)
			if err != nil {
				return fmt.Errorf("count patriot links: %w", err)
			}
			if links > 0 {
				continue
			}
			if err := s.patriotRepository.Delete(ctx, tx, patriotID); err != nil {
				return fmt.Errorf("delete patriot id=%d: %w", patriotID, err)
			}
			response.DeletedPatriotIDs = append(response.DeletedPatriotIDs, patriotID)
		}

		// 4. Delete the member, then the chapter it solely held
		if err := s.memberRepository.Delete(ctx, tx, memberID); err != nil {
			log.Error("Failed to delete member", "error", err)
			return fmt.Errorf("delete member: %w", err)
		}

		if soleReferrer {
			if err := s.chapterRepository.Delete(ctx, tx, *member.ChapterID); err != nil {
				return fmt.Errorf("delete chapter id=%d: %w", *member.ChapterID, err)
			}
			response.ChapterDeleted = true
			response.DeletedChapterID = uint32Ptr(*member.ChapterID)
			response.Message = MessageMemberChapterFreed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Event(metrics.EntityMember, "delete", "ok")
	if response.ChapterDeleted {
		s.metrics.Event(metrics.EntityChapter, "delete", "cascade")
	}
	for range response.DeletedPatriotIDs {
		s.metrics.Event(metrics.EntityPatriot, "delete", "cascade")
	}

	log.Info("Member deleted",
		"chapterDeleted", response.ChapterDeleted,
		"deletedPatriots", len(response.DeletedPatriotIDs),
	)
	return response, nil
}

// project builds the full member view from the same transaction
func (s *MemberService) project(ctx context.Context, tx *gorm.DB, member *model.Member) (*MemberResponse, error) {
	patriots, err := s.patriotRepository.FindByMemberID(ctx, tx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("find patriots for member: %w", err)
	}

	var chapter *model.Chapter
	if member.HasChapter() {
		chapter, err = s.chapterRepository.FindByID(ctx, tx, *member.ChapterID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find chapter for member: %w", err)
		}
	}

	return toMemberResponse(member, patriots, chapter), nil
}
