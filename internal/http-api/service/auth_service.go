package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"quantumflux/internal/config"
	"quantumflux/internal/http-api/dto"
	"quantumflux/internal/http-api/models"
	"quantumflux/internal/http-api/repository"
	"quantumflux/internal/middleware/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claims is the payload of the bearer token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type AuthService interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, req dto.RegisterRequest) (token string, user *models.User, err error)
	Login(ctx context.Context, req dto.LoginRequest) (token string, user *models.User, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	users     repository.UserRepository
	hasher    *auth.Hasher
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(users repository.UserRepository, hasher *auth.Hasher, cfg *config.Config) AuthService {
	return &authService{
		users:     users,
		hasher:    hasher,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenTTL:  cfg.JWTExpiry,
		now:       time.Now,
	}
}

func (s *authService) CheckEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return false, wrap("check email", err)
	}
	return exists, nil
}

// Register creates the account and its profile and signs the caller in.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (string, *models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateRegistration(req); err != nil {
		return "", nil, err
	}

	taken, err := s.users.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return "", nil, wrap("register", err)
	}
	if taken {
		return "", nil, fmt.Errorf("%w: email or username is taken", ErrConflict)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return "", nil, wrap("register", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if isDuplicateKey(err) {
			return "", nil, fmt.Errorf("%w: email or username is taken", ErrConflict)
		}
		return "", nil, wrap("register", err)
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", nil, wrap("register", err)
	}
	return token, user, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// keep the unknown-email path as slow as a wrong password
			s.hasher.Burn(req.Password)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, wrap("login", err)
	}

	ok, err := s.hasher.Verify(user.Password, req.Password)
	if err != nil {
		return "", nil, wrap("login", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID)
	if err != nil {
		return "", nil, wrap("login", err)
	}
	return token, user, nil
}

// GenerateToken signs an HS256 token for userID valid for the configured TTL.
func (s *authService) GenerateToken(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validateRegistration(req dto.RegisterRequest) error {
	if n := utf8.RuneCountInString(req.Username); n < 3 || n > 50 {
		return validationError("username must be 3-50 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return validationError("email is invalid")
	}
	if len(req.Password) < 6 {
		return validationError("password must be at least 6 characters")
	}
	return nil
}
