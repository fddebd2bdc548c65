package service

import (
	"context"
	"sync"
	"testing"
	"time"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/common/security"
	"tle_zone_dashboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestMemberService_Invite(t *testing.T) {
	repo := newFakeMemberRepo()
	svc := NewMemberService(repo, noTx{}, bcrypt.MinCost, zap.NewNop())

	m, err := svc.Invite(context.Background(), InviteMemberRequest{
		Name:     "Ada",
		Username: "ada",
		Role:     "owner",
		Avatar:   model.Avatar{Text: "AL"},
		Password: "s3cretpass",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, m.Role)
	assert.NotEqual(t, "s3cretpass", m.HashedPassword)
	assert.True(t, security.CheckPasswordHash("s3cretpass", repo.members["ada"].HashedPassword))

	_, err = svc.Invite(context.Background(), InviteMemberRequest{Username: "ada", Role: "member", Password: "whatever1"})
	assert.ErrorIs(t, err, common.ErrConflict)

	_, err = svc.Invite(context.Background(), InviteMemberRequest{Username: "bob", Role: "admin", Password: "whatever1"})
	assert.ErrorIs(t, err, common.ErrInvalidEnumValue)
}

func TestMemberService_LastOwnerGuard(t *testing.T) {
	ctx := context.Background()
	repo := newFakeMemberRepo(
		model.Member{Username: "ada", Role: model.RoleOwner},
		model.Member{Username: "bob", Role: model.RoleMember},
	)
	svc := NewMemberService(repo, noTx{}, bcrypt.MinCost, zap.NewNop())

	_, err := svc.ChangeRole(ctx, "ada", "member")
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.ErrorIs(t, svc.Remove(ctx, "ada"), common.ErrConflict)

	bob, err := svc.ChangeRole(ctx, "bob", "owner")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, bob.Role)

	ada, err := svc.ChangeRole(ctx, "ada", "member")
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, ada.Role)

	require.NoError(t, svc.Remove(ctx, "ada"))
	_, err = repo.FindByUsername(ctx, nil, "ada")
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, svc.Remove(ctx, "ghost"), common.ErrNotFound)
}

func TestMemberService_ConcurrentDemotionsKeepAnOwner(t *testing.T) {
	for i := 0; i < 20; i++ {
		repo := newFakeMemberRepo(
			model.Member{Username: "ada", Role: model.RoleOwner},
			model.Member{Username: "bob", Role: model.RoleOwner},
		)
		svc := NewMemberService(repo, &serialTx{}, bcrypt.MinCost, zap.NewNop())

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  = make([]error, 2)
		)
		for j, op := range []func() error{
			func() error { _, err := svc.ChangeRole(context.Background(), "ada", "member"); return err },
			func() error { return svc.Remove(context.Background(), "bob") },
		} {
			wg.Add(1)
			go func(j int, op func() error) {
				defer wg.Done()
				<-start
				errs[j] = op()
			}(j, op)
		}
		close(start)
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, common.ErrConflict)
				failed++
			}
		}
		assert.Equal(t, 1, failed, "exactly one of the two must be refused")

		owners, err := repo.LockOwners(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, owners)
	}
}

func TestAuthService_Login(t *testing.T) {
	security.InitJWT([]byte("test-secret"), time.Hour)
	hash, err := security.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	repo := newFakeMemberRepo(model.Member{Username: "ada", Role: model.RoleOwner, HashedPassword: hash})
	svc := NewAuthService(repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "ada", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada", resp.Member.Username)

	token, err := security.TokenAuth.Decode(resp.Token)
	require.NoError(t, err)
	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	role, err := security.GetRoleFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "owner", role)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "ada", Password: "wrong"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginRequest{Username: "ada"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}
