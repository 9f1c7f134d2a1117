package service

import (
	"context"

	"github.com/d60-Lab/linkboard/internal/apperror"
	"github.com/d60-Lab/linkboard/internal/model"
	"github.com/d60-Lab/linkboard/internal/repository"
)

var (
	ErrBlockSelf = apperror.ValidationFailed("username", "cannot block yourself")
)

// RelationshipService 屏蔽关系
type RelationshipService interface {
	// Block / Unblock 幂等：已经处于目标状态时返回 changed=false
	Block(ctx context.Context, blockerID, blockedID uint) (changed bool, err error)
	Unblock(ctx context.Context, blockerID, blockedID uint) (changed bool, err error)
	IsBlocking(ctx context.Context, blockerID, blockedID uint) (bool, error)
	ListBlocked(ctx context.Context, userID uint) ([]*model.User, error)
}

type relationshipService struct {
	blockRepo repository.BlockRepository
}

func NewRelationshipService(blockRepo repository.BlockRepository) RelationshipService {
	return &relationshipService{blockRepo: blockRepo}
}

func (s *relationshipService) Block(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	if blockerID == blockedID {
		return false, ErrBlockSelf
	}
	exists, err := s.blockRepo.Exists(ctx, blockerID, blockedID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.blockRepo.Create(ctx, blockerID, blockedID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *relationshipService) Unblock(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	if blockerID == blockedID {
		return false, ErrBlockSelf
	}
	exists, err := s.blockRepo.Exists(ctx, blockerID, blockedID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := s.blockRepo.Delete(ctx, blockerID, blockedID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *relationshipService) IsBlocking(ctx context.Context, blockerID, blockedID uint) (bool, error) {
	return s.blockRepo.Exists(ctx, blockerID, blockedID)
}

func (s *relationshipService) ListBlocked(ctx context.Context, userID uint) ([]*model.User, error) {
	return s.blockRepo.ListBlocked(ctx, userID)
}
