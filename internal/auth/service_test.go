package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront/internal/users"
	pkgAuth "github.com/storefrontlabs/storefront/pkg/auth"
	"github.com/storefrontlabs/storefront/pkg/config"
	"github.com/storefrontlabs/storefront/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront/pkg/errors"
	"github.com/storefrontlabs/storefront/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	created []users.CreateUserDTO
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if _, exists := s.byEmail[dto.Email]; exists {
		return nil, errDuplicateEmail{}
	}
	s.created = append(s.created, dto)
	user := dto.ToModel()
	if s.byEmail == nil {
		s.byEmail = map[string]*models.User{}
	}
	s.byEmail[dto.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

type errDuplicateEmail struct{}

func (errDuplicateEmail) Error() string {
	return `duplicate key value violates unique constraint "idx_users_email"`
}

type stubSessionManager struct {
	tracked []string
	revoked []string
}

func (s *stubSessionManager) Track(ctx context.Context, accessID string) error {
	s.tracked = append(s.tracked, accessID)
	return nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwtCfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "storefront",
		ExpirationMinutes: 30,
	}
	pwCfg := config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
	return jwtCfg, pwCfg
}

func buildTestService(t *testing.T, repo *stubUserRepo) (Service, *stubSessionManager, config.JWTConfig) {
	t.Helper()
	jwtCfg, pwCfg := testConfigs()
	sessions := &stubSessionManager{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      jwtCfg,
		PasswordConfig: pwCfg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions, jwtCfg
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	_, pwCfg := testConfigs()
	hashed, err := security.HashPassword(password, pwCfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hashed
}

func TestRegisterIssuesTokenAndTracksSession(t *testing.T) {
	repo := &stubUserRepo{}
	svc, sessions, jwtCfg := buildTestService(t, repo)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "  Buyer@Example.COM ",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(repo.created))
	}
	if repo.created[0].Email != "buyer@example.com" {
		t.Fatalf("expected normalized email, got %q", repo.created[0].Email)
	}

	claims, err := pkgAuth.ParseAccessToken(jwtCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Email != "buyer@example.com" {
		t.Fatalf("unexpected email claim %q", claims.Email)
	}
	if claims.IsAdmin {
		t.Fatal("fresh registrations must not be admins")
	}
	if len(sessions.tracked) != 1 || sessions.tracked[0] != claims.ID {
		t.Fatalf("expected session tracked under jti %q, got %v", claims.ID, sessions.tracked)
	}
	if resp.User == nil || resp.User.Email != "buyer@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	repo := &stubUserRepo{byEmail: map[string]*models.User{
		"buyer@example.com": {ID: uuid.New(), Email: "buyer@example.com"},
	}}
	svc, _, _ := buildTestService(t, repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "buyer@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct horse",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLoginVerifiesCredentials(t *testing.T) {
	password := "hunter22secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		IsActive:     true,
	}
	repo := &stubUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	svc, sessions, jwtCfg := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Buyer@Example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(jwtCfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("unexpected user id claim %s", claims.UserID)
	}
	if len(sessions.tracked) != 1 {
		t.Fatalf("expected one tracked session, got %d", len(sessions.tracked))
	}
}

func TestLoginRejectsBadPasswordAndUnknownUser(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
		IsActive:     true,
	}
	repo := &stubUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	svc, _, _ := buildTestService(t, repo)

	for _, req := range []LoginRequest{
		{Email: "buyer@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "right-password"},
		{Email: "", Password: "right-password"},
	} {
		_, err := svc.Login(context.Background(), req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %+v, got %v", req, err)
		}
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	password := "hunter22secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     false,
	}
	repo := &stubUserRepo{byEmail: map[string]*models.User{user.Email: user}}
	svc, _, _ := buildTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := &stubUserRepo{}
	svc, sessions, _ := buildTestService(t, repo)

	if err := svc.Logout(context.Background(), "jti-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-123" {
		t.Fatalf("expected revoked session, got %v", sessions.revoked)
	}

	err := svc.Logout(context.Background(), "  ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank session, got %v", err)
	}
}
