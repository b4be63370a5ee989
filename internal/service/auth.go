package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hivemindhq/hivemind/internal/domain"
)

const apiKeyPrefix = "hvm_"

type SpaceRepository interface {
	Create(ctx context.Context, space *domain.Space) error
	GetByID(ctx context.Context, id string) (*domain.Space, error)
	GetByName(ctx context.Context, name string) (*domain.Space, error)
	List(ctx context.Context) ([]*domain.Space, error)
	Delete(ctx context.Context, id string) error
}

type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetBySpaceID(ctx context.Context, spaceID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	spaceRepo SpaceRepository
	keyRepo   APIKeyRepository
	uuidGen   UUIDGenerator
}

func NewAuthService(spaceRepo SpaceRepository, keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		spaceRepo: spaceRepo,
		keyRepo:   keyRepo,
		uuidGen:   uuidGen,
	}
}

func (s *AuthService) CreateSpace(ctx context.Context, name string) (*domain.Space, error) {
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "space name is required")
	}

	space := &domain.Space{
		ID:        s.uuidGen.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := domain.ValidateSpace(space); err != nil {
		return nil, err
	}

	if err := s.spaceRepo.Create(ctx, space); err != nil {
		return nil, err
	}

	return space, nil
}

func (s *AuthService) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	if id == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "space ID is required")
	}
	return s.spaceRepo.GetByID(ctx, id)
}

func (s *AuthService) ListSpaces(ctx context.Context) ([]*domain.Space, error) {
	return s.spaceRepo.List(ctx)
}

func (s *AuthService) CreateAPIKey(ctx context.Context, spaceID, name string) (string, error) {
	if spaceID == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "space ID is required")
	}
	if name == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	_, err := s.spaceRepo.GetByID(ctx, spaceID)
	if err != nil {
		return "", err
	}

	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	hash := hashToken(token)

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		SpaceID:   spaceID,
		Name:      name,
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
		RevokedAt: nil,
	}

	if err := domain.ValidateAPIKey(key); err != nil {
		return "", err
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return "", err
	}

	return token, nil
}

// CreateAPIKeyWithToken registers a caller-supplied token instead of
// generating one. Used for seeding deterministic credentials at startup.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, spaceID, name, token string) error {
	if spaceID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "space ID is required")
	}
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected hvm_<64 hex chars>)")
	}

	_, err := s.spaceRepo.GetByID(ctx, spaceID)
	if err != nil {
		return err
	}

	hash := hashToken(token)

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		SpaceID:   spaceID,
		Name:      name,
		KeyHash:   hash,
		CreatedAt: time.Now().UTC(),
		RevokedAt: nil,
	}

	if err := domain.ValidateAPIKey(key); err != nil {
		return err
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey resolves a bearer token to the space it grants access to.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if !IsValidAPIToken(token) {
		return "", domain.ErrInvalidAPIKey
	}

	hash := hashToken(token)

	key, err := s.keyRepo.GetByHash(ctx, hash)
	if err != nil {
		if err == domain.ErrAPIKeyNotFound {
			return "", domain.ErrInvalidAPIKey
		}
		return "", err
	}

	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}

	return key.SpaceID, nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, spaceID string) ([]*domain.APIKey, error) {
	if spaceID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "space ID is required")
	}

	return s.keyRepo.GetBySpaceID(ctx, spaceID)
}

func generateAPIToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}
	hexPart := token[len(apiKeyPrefix):]
	if len(hexPart) != 64 {
		return false
	}
	for _, c := range hexPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
