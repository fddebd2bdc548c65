package service

import (
	"context"
	"database/sql"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/common/security"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"

	"go.uber.org/zap"
)

type MemberService struct {
	repo       repository.MemberRepository
	tx         TxRunner
	bcryptCost int
	log        *zap.Logger
}

func NewMemberService(repo repository.MemberRepository, tx TxRunner, bcryptCost int, log *zap.Logger) *MemberService {
	return &MemberService{repo: repo, tx: tx, bcryptCost: bcryptCost, log: log}
}

type InviteMemberRequest struct {
	Name     string       `json:"name" validate:"required"`
	Username string       `json:"username" validate:"required,max=64"`
	Role     string       `json:"role" validate:"required,oneof=member owner"`
	Avatar   model.Avatar `json:"avatar"`
	Password string       `json:"password" validate:"required,min=8"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (s *MemberService) List(ctx context.Context) ([]model.Member, error) {
	return s.repo.List(ctx)
}

func (s *MemberService) Invite(ctx context.Context, req InviteMemberRequest) (*model.Member, error) {
	role, err := model.ParseMemberRole(req.Role)
	if err != nil {
		return nil, err
	}
	hashed, err := security.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &model.Member{
		Name:           req.Name,
		Username:       req.Username,
		Role:           role,
		Avatar:         req.Avatar,
		HashedPassword: hashed,
	}
	if err := member.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, err
	}
	s.log.Info("member invited", zap.String("username", member.Username), zap.String("role", string(role)))
	return member, nil
}

// ChangeRole refuses to demote the last owner.
func (s *MemberService) ChangeRole(ctx context.Context, username, role string) (*model.Member, error) {
	newRole, err := model.ParseMemberRole(role)
	if err != nil {
		return nil, err
	}

	var member *model.Member
	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		m, err := s.guardedFind(ctx, tx, username, newRole)
		if err != nil {
			return err
		}
		member = m
		if m.Role == newRole {
			return nil
		}
		return s.repo.UpdateRole(ctx, tx, username, newRole)
	})
	if err != nil {
		return nil, err
	}
	if member.Role != newRole {
		member.Role = newRole
		s.log.Info("member role changed", zap.String("username", username), zap.String("role", string(newRole)))
	}
	return member, nil
}

// Remove refuses to delete the last owner.
func (s *MemberService) Remove(ctx context.Context, username string) error {
	err := s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.guardedFind(ctx, tx, username, ""); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, username)
	})
	if err != nil {
		return err
	}
	s.log.Info("member removed", zap.String("username", username))
	return nil
}

// guardedFind loads username inside tx. When the member is an owner about to
// stop being one, it first locks the owner rows so that concurrent demotions
// and removals are checked one at a time.
func (s *MemberService) guardedFind(ctx context.Context, tx *sql.Tx, username string, next model.MemberRole) (*model.Member, error) {
	member, err := s.repo.FindByUsername(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if member.Role != model.RoleOwner || next == model.RoleOwner {
		return member, nil
	}

	owners, err := s.repo.LockOwners(ctx, tx)
	if err != nil {
		return nil, err
	}
	// Re-read under the lock; a concurrent change may have committed meanwhile.
	member, err = s.repo.FindByUsername(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if member.Role == model.RoleOwner && owners <= 1 {
		return nil, fmt.Errorf("team must keep at least one owner: %w", common.ErrConflict)
	}
	return member, nil
}
