package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/adapters/persistence/models"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/config"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/core/domain"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/audit"
	"github.com/LordAhmad1/Clinic-Pro-sub000/internal/pkg/jwt"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*models.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*models.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) List(ctx context.Context, offset, limit int) ([]*models.Account, int64, error) {
	args := m.Called(ctx, offset, limit)
	if accs, ok := args.Get(0).([]*models.Account); ok {
		return accs, args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockAccountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountRepo) ApplyLoginOutcome(ctx context.Context, id string, expectedAttempts, attempts int, lockedUntil, lastLogin *time.Time) (bool, error) {
	args := m.Called(ctx, id, expectedAttempts, attempts, lockedUntil, lastLogin)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockAccountRepo) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *mockAccountRepo) SetRole(ctx context.Context, id string, role domain.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *mockAccountRepo) ResetLock(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAccountRepo) ReleaseExpiredLocks(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccountRepo) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

const testPassword = "doctor12345"

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			AccessSecret:     "test_access_secret",
			RefreshSecret:    "test_refresh_secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
			Issuer:           "clinic-pro-api",
			Audience:         "clinic-pro-client",
		},
		Security: config.SecurityConfig{
			MaxLoginAttempts: 5,
			LockoutMinutes:   15,
		},
	}
}

// hashFor uses the minimum bcrypt cost; verification reads the cost from the
// hash itself so tests stay fast.
func hashFor(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func testAccount(t *testing.T) *models.Account {
	t.Helper()
	return &models.Account{
		ID:           primitive.NewObjectID(),
		Email:        "doctor@clinic.local",
		PasswordHash: hashFor(t, testPassword),
		Role:         domain.RoleDoctor,
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
	}
}

func newTestAuthService(repo *mockAccountRepo, now time.Time) *AuthService {
	svc := NewAuthService(repo, testConfig(), audit.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestLogin_ValidationFails(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())

	cases := []struct {
		name  string
		input LoginInput
	}{
		{"empty email", LoginInput{Email: "", Password: "secret123"}},
		{"blank email", LoginInput{Email: "   ", Password: "secret123"}},
		{"empty password", LoginInput{Email: "doctor@clinic.local", Password: ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), &tc.input, "10.0.0.1")
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Nil(t, resp)
		})
	}

	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())

	repo.On("GetByEmail", mock.Anything, "ghost@clinic.local").
		Return(nil, domain.ErrAccountNotFound).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    "ghost@clinic.local",
		Password: "whatever123",
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "ApplyLoginOutcome",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_EmailNormalized(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)
	account := testAccount(t)

	repo.On("GetByEmail", mock.Anything, "doctor@clinic.local").Return(account, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 0, 0, (*time.Time)(nil), &now).
		Return(true, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    "  Doctor@Clinic.LOCAL ",
		Password: testPassword,
	}, "10.0.0.1")

	require.NoError(t, err)
	require.NotNil(t, resp)
	repo.AssertExpectations(t)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	account := testAccount(t)
	account.IsActive = false

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: testPassword,
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrAccountDeactivated)
	assert.Nil(t, resp)
	repo.AssertNotCalled(t, "ApplyLoginOutcome",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_LockedAccountRejectsCorrectPassword(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)
	until := now.Add(10 * time.Minute)
	account.FailedAttempts = 5
	account.LockedUntil = &until

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: testPassword,
	}, "10.0.0.1")

	var locked *domain.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, until, locked.Until)
	assert.Equal(t, 10*time.Minute, locked.Remaining)
	assert.Nil(t, resp)

	// A rejected attempt never touches the stored state
	repo.AssertNotCalled(t, "ApplyLoginOutcome",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_WrongPasswordIncrementsCounter(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)
	account.FailedAttempts = 2

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 2, 3, (*time.Time)(nil), (*time.Time)(nil)).
		Return(true, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: "wrong-password1",
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestLogin_FifthFailureLocksAccount(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)
	account.FailedAttempts = 4
	until := now.Add(15 * time.Minute)

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 4, 5, &until, (*time.Time)(nil)).
		Return(true, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: "wrong-password1",
	}, "10.0.0.1")

	var locked *domain.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, until, locked.Until)
	assert.Equal(t, 15*time.Minute, locked.Remaining)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)
	account.FailedAttempts = 3 // prior failures are wiped by a valid login

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 3, 0, (*time.Time)(nil), &now).
		Return(true, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: testPassword,
	}, "10.0.0.1")

	require.NoError(t, err)
	require.NotNil(t, resp)
	repo.AssertExpectations(t)

	assert.Equal(t, account.Email, resp.Account.Email)
	assert.Equal(t, domain.RoleDoctor, resp.Account.Role)
	require.NotNil(t, resp.Account.LastLogin)
	assert.Equal(t, now, *resp.Account.LastLogin)

	// Both tokens must carry the right class and subject
	cfg := testConfig()
	access, err := jwt.ValidateAccessToken(resp.AccessToken,
		cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience)
	require.NoError(t, err)
	assert.Equal(t, account.ID.Hex(), access.Subject)
	assert.Equal(t, account.Email, access.Email)
	assert.Equal(t, string(domain.RoleDoctor), access.Role)
	assert.True(t, access.Verified)

	refresh, err := jwt.ValidateRefreshToken(resp.RefreshToken,
		cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.Audience)
	require.NoError(t, err)
	assert.Equal(t, account.ID.Hex(), refresh.Subject)
	assert.NotEmpty(t, refresh.ID)
}

func TestLogin_RetriesAfterLostWriteRace(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)

	// A concurrent failure moved the counter from 0 to 1 between our read
	// and write; the retry re-reads and lands on 1 -> 2.
	rival := *account
	rival.FailedAttempts = 1

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 0, 1, (*time.Time)(nil), (*time.Time)(nil)).
		Return(false, nil).Once()
	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(&rival, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 1, 2, (*time.Time)(nil), (*time.Time)(nil)).
		Return(true, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: "wrong-password1",
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestLogin_DetectsLockCreatedByConcurrentAttempt(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)
	account.FailedAttempts = 4

	// The rival attempt reached the threshold first
	until := now.Add(15 * time.Minute)
	lockedRival := *account
	lockedRival.FailedAttempts = 5
	lockedRival.LockedUntil = &until

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 4, 5, &until, (*time.Time)(nil)).
		Return(false, nil).Once()
	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(&lockedRival, nil).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: "wrong-password1",
	}, "10.0.0.1")

	var locked *domain.AccountLockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, until, locked.Until)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestLogin_AccountDeletedMidAttempt(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)

	// The write loses its race and the re-read finds the account gone:
	// the caller sees the same error as an unknown email, not a 500.
	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 0, 1, (*time.Time)(nil), (*time.Time)(nil)).
		Return(false, nil).Once()
	repo.On("GetByID", mock.Anything, account.ID.Hex()).
		Return(nil, domain.ErrAccountNotFound).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: "wrong-password1",
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestLogin_FailsClosedWhenWriteNeverApplies(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)

	account := testAccount(t)

	repo.On("GetByEmail", mock.Anything, account.Email).Return(account, nil).Once()
	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Times(lockoutApplyRetries)
	repo.On("ApplyLoginOutcome", mock.Anything, account.ID.Hex(), 0, 0, (*time.Time)(nil), &now).
		Return(false, nil).Times(lockoutApplyRetries + 1)

	// Correct password, but the reset never lands: no tokens
	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    account.Email,
		Password: testPassword,
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrInternalServer)
	assert.Nil(t, resp)
	repo.AssertExpectations(t)
}

func TestLogin_StorageErrorNotDowngraded(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())

	storageErr := errors.New("connection reset by peer")
	repo.On("GetByEmail", mock.Anything, "doctor@clinic.local").Return(nil, storageErr).Once()

	resp, err := svc.Login(context.Background(), &LoginInput{
		Email:    "doctor@clinic.local",
		Password: testPassword,
	}, "10.0.0.1")

	assert.ErrorIs(t, err, storageErr)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Nil(t, resp)
}

func TestRefresh_Success(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)
	cfg := testConfig()

	account := testAccount(t)
	token, err := jwt.GenerateRefreshToken(account.ID.Hex(),
		cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.RefreshTokenDays)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

	resp, err := svc.Refresh(context.Background(), token, "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	repo.AssertExpectations(t)

	// Rotation mints a distinct refresh token
	assert.NotEqual(t, token, resp.RefreshToken)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken,
		cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience)
	require.NoError(t, err)
	assert.Equal(t, account.ID.Hex(), claims.Subject)
}

func TestRefresh_MissingToken(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())

	resp, err := svc.Refresh(context.Background(), "", "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Nil(t, resp)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	cfg := testConfig()

	account := testAccount(t)
	accessToken, err := jwt.GenerateAccessToken(account.ID.Hex(), account.Email, "doctor", true,
		cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), accessToken, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.Nil(t, resp)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	cfg := testConfig()

	account := testAccount(t)
	token, err := jwt.GenerateRefreshToken(account.ID.Hex(),
		cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.Audience, -1)
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), token, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.Nil(t, resp)
}

func TestRefresh_AccountGoneOrDisabled(t *testing.T) {
	cfg := testConfig()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	newToken := func(t *testing.T, id string) string {
		t.Helper()
		token, err := jwt.GenerateRefreshToken(id,
			cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.RefreshTokenDays)
		require.NoError(t, err)
		return token
	}

	t.Run("account deleted", func(t *testing.T) {
		repo := new(mockAccountRepo)
		svc := newTestAuthService(repo, now)
		account := testAccount(t)

		repo.On("GetByID", mock.Anything, account.ID.Hex()).
			Return(nil, domain.ErrAccountNotFound).Once()

		_, err := svc.Refresh(context.Background(), newToken(t, account.ID.Hex()), "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrAuthentication)
	})

	t.Run("account deactivated", func(t *testing.T) {
		repo := new(mockAccountRepo)
		svc := newTestAuthService(repo, now)
		account := testAccount(t)
		account.IsActive = false

		repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

		_, err := svc.Refresh(context.Background(), newToken(t, account.ID.Hex()), "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrAuthentication)
	})

	t.Run("account locked", func(t *testing.T) {
		repo := new(mockAccountRepo)
		svc := newTestAuthService(repo, now)
		account := testAccount(t)
		until := now.Add(10 * time.Minute)
		account.LockedUntil = &until

		repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

		_, err := svc.Refresh(context.Background(), newToken(t, account.ID.Hex()), "10.0.0.1")
		assert.ErrorIs(t, err, domain.ErrAuthentication)
	})
}

func TestVerify_Success(t *testing.T) {
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)
	cfg := testConfig()

	account := testAccount(t)
	token, err := jwt.GenerateAccessToken(account.ID.Hex(), account.Email, "doctor", true,
		cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

	resp, err := svc.Verify(context.Background(), token, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, account.Email, resp.Email)
	assert.Equal(t, account.ID.Hex(), resp.ID)
}

func TestVerify_LockedAccountKeepsAccessToken(t *testing.T) {
	// A lock blocks new logins, not access tokens already in flight
	repo := new(mockAccountRepo)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(repo, now)
	cfg := testConfig()

	account := testAccount(t)
	until := now.Add(10 * time.Minute)
	account.FailedAttempts = 5
	account.LockedUntil = &until

	token, err := jwt.GenerateAccessToken(account.ID.Hex(), account.Email, "doctor", true,
		cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

	resp, err := svc.Verify(context.Background(), token, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, account.Email, resp.Email)
}

func TestVerify_DeactivatedAccount(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	cfg := testConfig()

	account := testAccount(t)
	account.IsActive = false
	token, err := jwt.GenerateAccessToken(account.ID.Hex(), account.Email, "doctor", true,
		cfg.JWT.AccessSecret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

	resp, err := svc.Verify(context.Background(), token, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Nil(t, resp)
}

func TestVerify_RejectsRefreshToken(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	cfg := testConfig()

	account := testAccount(t)
	token, err := jwt.GenerateRefreshToken(account.ID.Hex(),
		cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.RefreshTokenDays)
	require.NoError(t, err)

	resp, err := svc.Verify(context.Background(), token, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.Nil(t, resp)
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	account := testAccount(t)

	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

	err := svc.ChangePassword(context.Background(), account.ID.Hex(), &ChangePasswordInput{
		CurrentPassword: "not-the-password1",
		NewPassword:     "brand-new-pass9",
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_RejectsWeakPassword(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	account := testAccount(t)

	cases := []struct {
		name string
		pw   string
	}{
		{"too short", "ab1"},
		{"no digit", "lettersonlyhere"},
		{"no letter", "1234567890"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

			err := svc.ChangePassword(context.Background(), account.ID.Hex(), &ChangePasswordInput{
				CurrentPassword: testPassword,
				NewPassword:     tc.pw,
			}, "10.0.0.1")

			assert.ErrorIs(t, err, domain.ErrWeakPassword)
		})
	}

	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_RejectsSamePassword(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	account := testAccount(t)

	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()

	err := svc.ChangePassword(context.Background(), account.ID.Hex(), &ChangePasswordInput{
		CurrentPassword: testPassword,
		NewPassword:     testPassword,
	}, "10.0.0.1")

	assert.ErrorIs(t, err, domain.ErrSamePassword)
	repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_Success(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())
	account := testAccount(t)
	newPassword := "brand-new-pass9"

	var storedHash string
	repo.On("GetByID", mock.Anything, account.ID.Hex()).Return(account, nil).Once()
	repo.On("UpdatePassword", mock.Anything, account.ID.Hex(), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { storedHash = args.String(2) }).
		Return(nil).Once()

	err := svc.ChangePassword(context.Background(), account.ID.Hex(), &ChangePasswordInput{
		CurrentPassword: testPassword,
		NewPassword:     newPassword,
	}, "10.0.0.1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(newPassword)))
}

func TestLogout_NeverFails(t *testing.T) {
	repo := new(mockAccountRepo)
	svc := newTestAuthService(repo, time.Now())

	assert.NotPanics(t, func() {
		svc.Logout("", "10.0.0.1")
		svc.Logout("not-a-jwt", "10.0.0.1")
	})
}
