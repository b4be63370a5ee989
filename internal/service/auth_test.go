package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivemindhq/hivemind/internal/domain"
)

func newAuthFixture() (*AuthService, *MockSpaceRepository, *MockAPIKeyRepository) {
	mockSpaceRepo := new(MockSpaceRepository)
	mockKeyRepo := new(MockAPIKeyRepository)
	svc := NewAuthService(mockSpaceRepo, mockKeyRepo, &FixedUUIDGenerator{IDs: []string{"id-1", "id-2"}})
	return svc, mockSpaceRepo, mockKeyRepo
}

func TestAuthService_CreateSpace(t *testing.T) {
	svc, mockSpaceRepo, _ := newAuthFixture()

	mockSpaceRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Space) bool {
		return s.ID == "id-1" && s.Name == "platform-team"
	})).Return(nil)

	space, err := svc.CreateSpace(context.Background(), "platform-team")

	require.NoError(t, err)
	assert.Equal(t, "platform-team", space.Name)
	mockSpaceRepo.AssertExpectations(t)
}

func TestAuthService_CreateSpace_EmptyName(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.CreateSpace(context.Background(), "")

	require.Error(t, err)
}

func TestAuthService_CreateAPIKey(t *testing.T) {
	svc, mockSpaceRepo, mockKeyRepo := newAuthFixture()

	mockSpaceRepo.On("GetByID", mock.Anything, "space1").
		Return(&domain.Space{ID: "space1", Name: "x", CreatedAt: time.Now()}, nil)
	mockKeyRepo.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.APIKey) bool {
		return k.SpaceID == "space1" && k.Name == "ci" && len(k.KeyHash) == 64
	})).Return(nil)

	token, err := svc.CreateAPIKey(context.Background(), "space1", "ci")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "hvm_"))
	assert.Len(t, token, len("hvm_")+64)
	assert.True(t, IsValidAPIToken(token))
	mockKeyRepo.AssertExpectations(t)
}

func TestAuthService_CreateAPIKey_UnknownSpace(t *testing.T) {
	svc, mockSpaceRepo, _ := newAuthFixture()

	mockSpaceRepo.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrSpaceNotFound)

	_, err := svc.CreateAPIKey(context.Background(), "ghost", "ci")

	assert.ErrorIs(t, err, domain.ErrSpaceNotFound)
}

func TestAuthService_ValidateAPIKey(t *testing.T) {
	svc, _, mockKeyRepo := newAuthFixture()

	token := "hvm_" + strings.Repeat("ab", 32)
	mockKeyRepo.On("GetByHash", mock.Anything, hashToken(token)).
		Return(&domain.APIKey{ID: "k1", SpaceID: "space1", Name: "ci", KeyHash: hashToken(token), CreatedAt: time.Now()}, nil)

	spaceID, err := svc.ValidateAPIKey(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "space1", spaceID)
}

func TestAuthService_ValidateAPIKey_Revoked(t *testing.T) {
	svc, _, mockKeyRepo := newAuthFixture()

	token := "hvm_" + strings.Repeat("cd", 32)
	revokedAt := time.Now()
	mockKeyRepo.On("GetByHash", mock.Anything, hashToken(token)).
		Return(&domain.APIKey{ID: "k1", SpaceID: "space1", Name: "ci", KeyHash: hashToken(token), CreatedAt: time.Now(), RevokedAt: &revokedAt}, nil)

	_, err := svc.ValidateAPIKey(context.Background(), token)

	assert.ErrorIs(t, err, domain.ErrAPIKeyRevoked)
}

func TestAuthService_ValidateAPIKey_UnknownHash(t *testing.T) {
	svc, _, mockKeyRepo := newAuthFixture()

	token := "hvm_" + strings.Repeat("ef", 32)
	mockKeyRepo.On("GetByHash", mock.Anything, hashToken(token)).Return(nil, domain.ErrAPIKeyNotFound)

	_, err := svc.ValidateAPIKey(context.Background(), token)

	assert.ErrorIs(t, err, domain.ErrInvalidAPIKey)
}

func TestIsValidAPIToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected bool
	}{
		{"Valid", "hvm_" + strings.Repeat("a1", 32), true},
		{"ValidUppercaseHex", "hvm_" + strings.Repeat("A1", 32), true},
		{"WrongPrefix", "ntx_" + strings.Repeat("a1", 32), false},
		{"TooShort", "hvm_abc", false},
		{"NonHex", "hvm_" + strings.Repeat("zz", 32), false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidAPIToken(tt.token))
		})
	}
}
