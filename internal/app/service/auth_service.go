package service

import (
	"context"
	"errors"
	"fmt"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/common/security"
	"tle_zone_dashboard/internal/domain/model"
	"tle_zone_dashboard/internal/domain/repository"
)

type AuthService struct {
	memberRepo repository.MemberRepository
}

func NewAuthService(memberRepo repository.MemberRepository) *AuthService {
	return &AuthService{memberRepo: memberRepo}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Member *model.Member `json:"member"`
	Token  string        `json:"token"`
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	member, err := s.memberRepo.FindByUsername(ctx, nil, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	if member.HashedPassword == "" || !security.CheckPasswordHash(req.Password, member.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(member.Username, string(member.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Member: member, Token: token}, nil
}
