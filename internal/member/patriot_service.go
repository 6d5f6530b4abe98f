package member

import (
	"context"
	"fmt"
	"time"

	"github.com/darregistry/member-registry/go-api-server/internal/model"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/logger"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/metrics"
	"gorm.io/gorm"
)

// PatriotService owns patriot dedup, the member_patriot links and the
// delete-with-last-reference rule.
type PatriotService struct {
	db                *gorm.DB
	memberRepository  *MemberRepository
	patriotRepository *PatriotRepository
	metrics           *metrics.Recorder
}

func NewPatriotService(
	db *gorm.DB,
	memberRepository *MemberRepository,
	patriotRepository *PatriotRepository,
	recorder *metrics.Recorder,
) *PatriotService {
	return &PatriotService{
		db:                db,
		memberRepository:  memberRepository,
		patriotRepository: patriotRepository,
		metrics:           recorder,
	}
}

// AssignOrCreatePatriot links the lowest-id patriot matching the request's natural key,
// creating one when nothing matches. Re-assigning an already linked patriot is a no-op.
func (s *PatriotService) AssignOrCreatePatriot(ctx context.Context, memberID uint32, request *PatriotRequest) (response *PatriotAssignmentResponse, err error) {
	defer s.metrics.Observe("assign_or_create_patriot", time.Now(), &err)
	ctx, log := logger.With(ctx, "memberID", memberID)

	if err := s.validate(request); err != nil {
		return nil, err
	}
	key := request.key()

	outcome := ""
	multipleMatches := false
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// 1. Lock the member so concurrent assignments run one after another
		if _, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}

		// 2. Dedup against the natural key
		matches, err := s.patriotRepository.FindMatching(ctx, tx, key)
		if err != nil {
			return fmt.Errorf("find matching patriots: %w", err)
		}
		if len(matches) > 1 {
			ids := make([]uint32, 0, len(matches))
			for _, match := range matches {
				ids = append(ids, match.ID)
			}
			log.Warn("Multiple patriots share a natural key, using lowest id", "patriotIDs", ids)
		}
		multipleMatches = len(matches) > 1

		var patriot *model.Patriot
		if len(matches) > 0 {
			patriot = &matches[0]
			outcome = "reused"
			response = &PatriotAssignmentResponse{Message: MessagePatriotAssigned}
		} else {
			patriot = model.NewPatriot(key)
			if err := s.patriotRepository.Create(ctx, tx, patriot); err != nil {
				log.Error("Failed to create patriot", "error", err)
				return fmt.Errorf("create patriot: %w", err)
			}
			outcome = "created"
			response = &PatriotAssignmentResponse{Message: MessagePatriotCreated}
		}

		// 3. Link; an existing link is left as is
		if _, err := s.patriotRepository.Link(ctx, tx, memberID, patriot.ID); err != nil {
			return fmt.Errorf("link patriot: %w", err)
		}

		response.Patriot = toPatriotResponse(patriot)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if multipleMatches {
		s.metrics.Event(metrics.EntityPatriot, "dedup", "multiple_matches")
	}
	s.metrics.Event(metrics.EntityPatriot, "assign", outcome)
	log.Info("Patriot assigned", "patriotID", response.Patriot.ID, "outcome", outcome)
	return response, nil
}

// CreateAndAssignPatriot is the strict variant of AssignOrCreatePatriot:
// any existing natural-key match is a conflict instead of being reused.
func (s *PatriotService) CreateAndAssignPatriot(ctx context.Context, memberID uint32, request *PatriotRequest) (response *PatriotAssignmentResponse, err error) {
	defer s.metrics.Observe("create_and_assign_patriot", time.Now(), &err)
	ctx, log := logger.With(ctx, "memberID", memberID)

	if err := s.validate(request); err != nil {
		return nil, err
	}
	key := request.key()

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}

		patriot, err := s.createUnique(ctx, tx, key)
		if err != nil {
			return err
		}

		if _, err := s.patriotRepository.Link(ctx, tx, memberID, patriot.ID); err != nil {
			return fmt.Errorf("link patriot: %w", err)
		}

		response = &PatriotAssignmentResponse{
			Message: MessagePatriotCreated,
			Patriot: toPatriotResponse(patriot),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Event(metrics.EntityPatriot, "assign", "created")
	log.Info("Patriot created for member", "patriotID", response.Patriot.ID)
	return response, nil
}

// AssignPatriotToMember links an existing patriot by id
func (s *PatriotService) AssignPatriotToMember(ctx context.Context, memberID, patriotID uint32) (response *PatriotAssignmentResponse, err error) {
	defer s.metrics.Observe("assign_patriot_to_member", time.Now(), &err)

	linked := false
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		patriot, err := s.patriotRepository.FindByIDForUpdate(ctx, tx, patriotID)
		if err != nil {
			return lookupError(err, ErrPatriotNotFound, "patriot", patriotID)
		}

		linked, err = s.patriotRepository.Link(ctx, tx, memberID, patriotID)
		if err != nil {
			return fmt.Errorf("link patriot: %w", err)
		}

		response = &PatriotAssignmentResponse{
			Message: MessagePatriotLinked,
			Patriot: toPatriotResponse(patriot),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if linked {
		s.metrics.Event(metrics.EntityPatriot, "assign", "linked")
	}
	return response, nil
}

// CreateUnassignedPatriot creates a patriot without members; a natural-key match is a conflict
func (s *PatriotService) CreateUnassignedPatriot(ctx context.Context, request *PatriotRequest) (response *PatriotResponse, err error) {
	defer s.metrics.Observe("create_unassigned_patriot", time.Now(), &err)

	if err := s.validate(request); err != nil {
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		patriot, err := s.createUnique(ctx, tx, request.key())
		if err != nil {
			return err
		}
		result := toPatriotResponse(patriot)
		response = &result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Event(metrics.EntityPatriot, "create", "unassigned")
	return response, nil
}

// UpdateUnassignedPatriot overwrites the natural-key fields of any patriot by id
func (s *PatriotService) UpdateUnassignedPatriot(ctx context.Context, patriotID uint32, request *PatriotRequest) (response *PatriotResponse, err error) {
	defer s.metrics.Observe("update_unassigned_patriot", time.Now(), &err)

	if err := s.validate(request); err != nil {
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		patriot, err := s.patriotRepository.FindByIDForUpdate(ctx, tx, patriotID)
		if err != nil {
			return lookupError(err, ErrPatriotNotFound, "patriot", patriotID)
		}

		response, err = s.overwrite(ctx, tx, patriot, request.key())
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// UpdatePatriot overwrites a patriot reached through one of its members
func (s *PatriotService) UpdatePatriot(ctx context.Context, memberID, patriotID uint32, request *PatriotRequest) (response *PatriotResponse, err error) {
	defer s.metrics.Observe("update_patriot", time.Now(), &err)

	if err := s.validate(request); err != nil {
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.memberRepository.FindByID(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		patriot, err := s.patriotRepository.FindByIDForUpdate(ctx, tx, patriotID)
		if err != nil {
			return lookupError(err, ErrPatriotNotFound, "patriot", patriotID)
		}

		linked, err := s.patriotRepository.IsLinked(ctx, tx, memberID, patriotID)
		if err != nil {
			return fmt.Errorf("check patriot link: %w", err)
		}
		if !linked {
			return fmt.Errorf("memberID=%d patriotID=%d: %w", memberID, patriotID, ErrPatriotNotLinked)
		}

		response, err = s.overwrite(ctx, tx, patriot, request.key())
		return err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// UnassignOrDeletePatriot removes the member's link and deletes the patriot
// when no other member references it. The result tells which of the two happened.
func (s *PatriotService) UnassignOrDeletePatriot(ctx context.Context, memberID, patriotID uint32) (response *UnassignPatriotResponse, err error) {
	defer s.metrics.Observe("unassign_or_delete_patriot", time.Now(), &err)
	ctx, log := logger.With(ctx, "memberID", memberID)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		// 1. Lock member then patriot, the same order assignments use
		if _, err := s.memberRepository.FindByIDForUpdate(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		if _, err := s.patriotRepository.FindByIDForUpdate(ctx, tx, patriotID); err != nil {
			return lookupError(err, ErrPatriotNotFound, "patriot", patriotID)
		}

		// 2. Remove the link
		removed, err := s.patriotRepository.Unlink(ctx, tx, memberID, patriotID)
		if err != nil {
			return fmt.Errorf("unlink patriot: %w", err)
		}
		if !removed {
			return fmt.Errorf("memberID=%d patriotID=%d: %w", memberID, patriotID, ErrPatriotNotLinked)
		}

		response = &UnassignPatriotResponse{
			Message:   MessagePatriotUnlinked,
			MemberID:  memberID,
			PatriotID: patriotID,
		}

		// 3. Delete the patriot when that was its last reference
		links, err := s.patriotRepository.CountLinks(ctx, tx, patriotID)
		if err != nil {
			return fmt.Errorf("count patriot links: %w", err)
		}
		if links == 0 {
			if err := s.patriotRepository.Delete(ctx, tx, patriotID); err != nil {
				return fmt.Errorf("delete patriot: %w", err)
			}
			response.Deleted = true
			response.Message = MessagePatriotDeleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "unlinked"
	if response.Deleted {
		outcome = "deleted"
	}
	s.metrics.Event(metrics.EntityPatriot, "unassign", outcome)
	log.Info("Patriot unassigned", "patriotID", patriotID, "outcome", outcome)
	return response, nil
}

// DeleteUnassignedPatriot deletes a patriot that no member references
func (s *PatriotService) DeleteUnassignedPatriot(ctx context.Context, patriotID uint32) (response *DeletePatriotResponse, err error) {
	defer s.metrics.Observe("delete_unassigned_patriot", time.Now(), &err)

	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.patriotRepository.FindByIDForUpdate(ctx, tx, patriotID); err != nil {
			return lookupError(err, ErrPatriotNotFound, "patriot", patriotID)
		}

		links, err := s.patriotRepository.CountLinks(ctx, tx, patriotID)
		if err != nil {
			return fmt.Errorf("count patriot links: %w", err)
		}
		if links > 0 {
			return fmt.Errorf("patriotID=%d links=%d: %w", patriotID, links, ErrPatriotStillAssigned)
		}

		if err := s.patriotRepository.Delete(ctx, tx, patriotID); err != nil {
			return fmt.Errorf("delete patriot: %w", err)
		}

		response = &DeletePatriotResponse{Message: MessagePatriotRemoved, PatriotID: patriotID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Event(metrics.EntityPatriot, "delete", "unassigned")
	return response, nil
}

func (s *PatriotService) DeleteAllPatriots(ctx context.Context) (err error) {
	defer s.metrics.Observe("delete_all_patriots", time.Now(), &err)
	logger.FromContext(ctx).Warn("Rejected request to delete all patriots")
	return fmt.Errorf("delete all patriots: %w", ErrPatriotBulkDelete)
}

func (s *PatriotService) GetAllPatriots(ctx context.Context) ([]PatriotResponse, error) {
	patriots, err := s.patriotRepository.FindAll(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("find patriots: %w", err)
	}
	return toPatriotResponses(patriots), nil
}

func (s *PatriotService) GetUnassignedPatriots(ctx context.Context) ([]PatriotResponse, error) {
	patriots, err := s.patriotRepository.FindUnassigned(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("find unassigned patriots: %w", err)
	}
	return toPatriotResponses(patriots), nil
}

func (s *PatriotService) GetPatriotsForMember(ctx context.Context, memberID uint32) (responses []PatriotResponse, err error) {
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.memberRepository.FindByID(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}

		patriots, err := s.patriotRepository.FindByMemberID(ctx, tx, memberID)
		if err != nil {
			return fmt.Errorf("find patriots for member: %w", err)
		}
		responses = toPatriotResponses(patriots)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetPatriotByID returns a patriot only when it is linked to the member
func (s *PatriotService) GetPatriotByID(ctx context.Context, memberID, patriotID uint32) (response *PatriotResponse, err error) {
	err = database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.memberRepository.FindByID(ctx, tx, memberID); err != nil {
			return lookupError(err, ErrMemberNotFound, "member", memberID)
		}
		patriot, err := s.patriotRepository.FindByID(ctx, tx, patriotID)
		if err != nil {
			return lookupError(err, ErrPatriotNotFound, "patriot", patriotID)
		}

		linked, err := s.patriotRepository.IsLinked(ctx, tx, memberID, patriotID)
		if err != nil {
			return fmt.Errorf("check patriot link: %w", err)
		}
		if !linked {
			return fmt.Errorf("memberID=%d patriotID=%d: %w", memberID, patriotID, ErrPatriotNotAssignedToMember)
		}

		result := toPatriotResponse(patriot)
		response = &result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *PatriotService) validate(request *PatriotRequest) error {
	if request == nil {
		return fmt.Errorf("patriot data is required %w", ErrInvalidPatriot)
	}
	return validateRequest(request, ErrInvalidPatriot)
}

// createUnique inserts a patriot, rejecting any existing natural-key match
func (s *PatriotService) createUnique(ctx context.Context, tx *gorm.DB, key model.PatriotKey) (*model.Patriot, error) {
	matches, err := s.patriotRepository.FindMatching(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("find matching patriots: %w", err)
	}
	if len(matches) > 0 {
		return nil, fmt.Errorf("patriotID=%d: %w", matches[0].ID, ErrPatriotAlreadyExists)
	}

	patriot := model.NewPatriot(key)
	if err := s.patriotRepository.Create(ctx, tx, patriot); err != nil {
		return nil, fmt.Errorf("create patriot: %w", err)
	}
	return patriot, nil
}

// overwrite replaces the natural-key fields unless another patriot already holds the new key
func (s *PatriotService) overwrite(ctx context.Context, tx *gorm.DB, patriot *model.Patriot, key model.PatriotKey) (*PatriotResponse, error) {
	matches, err := s.patriotRepository.FindMatching(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("find matching patriots: %w", err)
	}
	for _, match := range matches {
		if match.ID != patriot.ID {
			return nil, fmt.Errorf("patriotID=%d: %w", match.ID, ErrPatriotAlreadyExists)
		}
	}

	patriot.FirstName = key.FirstName
	patriot.LastName = key.LastName
	patriot.State = key.State
	patriot.RankService = key.RankService
	if err := s.patriotRepository.Save(ctx, tx, patriot); err != nil {
		return nil, fmt.Errorf("save patriot: %w", err)
	}

	response := toPatriotResponse(patriot)
	return &response, nil
}

