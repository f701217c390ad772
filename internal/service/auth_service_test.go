package service_test

import (
	"context"
	"strings"
	"testing"

	"yardpos/internal/config"
	"yardpos/internal/dto"
	"yardpos/internal/model"
	"yardpos/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeOperatorRepo struct {
	ops map[uuid.UUID]*model.Operator
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{ops: make(map[uuid.UUID]*model.Operator)}
}

func (r *fakeOperatorRepo) Create(_ context.Context, o *model.Operator) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	r.ops[o.ID] = &cp
	return nil
}

func (r *fakeOperatorRepo) FindByUsername(_ context.Context, username string) (*model.Operator, error) {
	for _, o := range r.ops {
		if o.Username == username {
			cp := *o
			return &cp, nil
		}
		if o.Email != nil && strings.EqualFold(*o.Email, username) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOperatorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Operator, error) {
	o, ok := r.ops[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOperatorRepo) List(_ context.Context, includeInactive bool) ([]model.Operator, error) {
	var out []model.Operator
	for _, o := range r.ops {
		if o.Active || includeInactive {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOperatorRepo) Update(_ context.Context, o *model.Operator) error {
	cp := *o
	r.ops[o.ID] = &cp
	return nil
}

func (r *fakeOperatorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if o, ok := r.ops[id]; ok {
		o.Active = false
	}
	return nil
}

func (r *fakeOperatorRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if o, ok := r.ops[id]; ok {
		o.Active = true
	}
	return nil
}

// seed plants an operator with a MinCost hash to keep the test suite fast.
func (r *fakeOperatorRepo) seed(t *testing.T, username, password, role string, active bool) *model.Operator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	o := &model.Operator{
		ID:           uuid.New(),
		Username:     username,
		Name:         username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
	}
	require.NoError(t, r.Create(context.Background(), o))
	return o
}

func newAuthService() (service.AuthService, *fakeOperatorRepo) {
	repo := newFakeOperatorRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return service.NewAuthService(repo, cfg), repo
}

// ── Login / Refresh ──────────────────────────────────────────────────────────

func TestLoginIssuesTokenPair(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "maria", "scrapyard1", "operator", true)

	resp, err := auth.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "scrapyard1"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "maria", resp.User.Username)
	assert.Equal(t, "operator", resp.User.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "maria", "scrapyard1", "operator", true)

	_, err := auth.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "nope"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginRejectsInactiveOperator(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "maria", "scrapyard1", "operator", false)

	_, err := auth.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "scrapyard1"})
	assert.EqualError(t, err, "invalid credentials")
}

func TestRefreshRotatesTokens(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "maria", "scrapyard1", "operator", true)

	login, err := auth.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "scrapyard1"})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "maria", refreshed.User.Username)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	auth, _ := newAuthService()
	_, err := auth.Refresh(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestRefreshRejectsDeactivatedOperator(t *testing.T) {
	auth, repo := newAuthService()
	op := repo.seed(t, "maria", "scrapyard1", "operator", true)

	login, err := auth.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "scrapyard1"})
	require.NoError(t, err)

	require.NoError(t, auth.DeactivateOperator(context.Background(), op.ID))

	_, err = auth.Refresh(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}

// ── Supervisor authorization ─────────────────────────────────────────────────

func TestAuthorizeSupervisorAcceptsSupervisorOrAdmin(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "maria", "operator-pw", "operator", true)
	repo.seed(t, "carlos", "super-pw", "supervisor", true)
	repo.seed(t, "ana", "admin-pw", "admin", true)

	assert.NoError(t, auth.AuthorizeSupervisor(context.Background(), "super-pw"))
	assert.NoError(t, auth.AuthorizeSupervisor(context.Background(), "admin-pw"))
}

func TestAuthorizeSupervisorRejectsOperatorPassword(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "maria", "operator-pw", "operator", true)

	err := auth.AuthorizeSupervisor(context.Background(), "operator-pw")
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}

func TestAuthorizeSupervisorRejectsInactiveSupervisor(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "carlos", "super-pw", "supervisor", false)

	err := auth.AuthorizeSupervisor(context.Background(), "super-pw")
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}

func TestAuthorizeSupervisorRejectsEmptyPassword(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "carlos", "super-pw", "supervisor", true)

	err := auth.AuthorizeSupervisor(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}

// ── Operator management ──────────────────────────────────────────────────────

func TestCreateOperatorHashesPassword(t *testing.T) {
	auth, repo := newAuthService()

	resp, err := auth.CreateOperator(context.Background(), dto.CreateOperatorRequest{
		Username: "joao",
		Name:     "João",
		Password: "longenough",
		Role:     "operator",
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)

	stored, err := repo.FindByUsername(context.Background(), "joao")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("longenough")))
}

func TestUpdateOperatorChangesRoleAndPassword(t *testing.T) {
	auth, repo := newAuthService()
	op := repo.seed(t, "maria", "scrapyard1", "operator", true)

	_, err := auth.UpdateOperator(context.Background(), op.ID, dto.UpdateOperatorRequest{
		Role:     "supervisor",
		Password: "newsecret1",
	})
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, "supervisor", stored.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret1")))

	// And the new role now passes the supervisor gate.
	assert.NoError(t, auth.AuthorizeSupervisor(context.Background(), "newsecret1"))
}

func TestListOperatorsFiltersInactive(t *testing.T) {
	auth, repo := newAuthService()
	repo.seed(t, "maria", "pw-one", "operator", true)
	repo.seed(t, "gone", "pw-two", "operator", false)

	active, err := auth.ListOperators(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := auth.ListOperators(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
