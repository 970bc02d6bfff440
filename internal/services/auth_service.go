package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"pos-service/internal/domain"
	"pos-service/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(r repository.UserRepository, secret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    r,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Register creates an account. Self-registration always lands as CUSTOMER;
// staff roles are assigned by an admin at creation time.
func (s *AuthService) Register(ctx context.Context, createdBy *domain.Actor, in RegisterInput) (*domain.User, error) {
	if in.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "name required"}
	}
	if !strings.Contains(in.Email, "@") {
		return nil, &domain.ValidationError{Field: "email", Reason: "invalid email"}
	}
	if len(in.Password) < 8 {
		return nil, &domain.ValidationError{Field: "password", Reason: "password must be at least 8 characters"}
	}

	role := domain.RoleCustomer
	if in.Role != "" && in.Role != domain.RoleCustomer {
		if !in.Role.IsValid() {
			return nil, &domain.ValidationError{Field: "role", Reason: "unknown role"}
		}
		if createdBy == nil || createdBy.Role != domain.RoleAdmin {
			return nil, domain.ErrUnauthorized
		}
		role = in.Role
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil || u.DeactivatedAt != nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := &Claims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Authenticate resolves a bearer token into an Actor. The caller passes the
// result explicitly into service calls.
func (s *AuthService) Authenticate(tokenStr string) (*domain.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	if !claims.Role.IsValid() {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Actor{ID: claims.UserID, Role: claims.Role}, nil
}

// ChangeRole is admin-only; roles are otherwise immutable.
func (s *AuthService) ChangeRole(ctx context.Context, actor domain.Actor, userID string, role domain.Role) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrUnauthorized
	}
	if !role.IsValid() {
		return &domain.ValidationError{Field: "role", Reason: "unknown role"}
	}
	return s.users.UpdateRole(ctx, userID, role)
}

func (s *AuthService) Deactivate(ctx context.Context, actor domain.Actor, userID string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrUnauthorized
	}
	return s.users.Deactivate(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !actor.Elevated() {
		return nil, domain.ErrUnauthorized
	}
	return s.users.List(ctx)
}
