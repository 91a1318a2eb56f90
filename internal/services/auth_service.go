package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperror"
	"storefront/internal/auth"
	"storefront/internal/dto"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

const msgInvalidCredentials = "invalid credentials"

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *zap.Logger
}

// NewAuthService creates a new AuthService issuing tokens valid for tokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// RegisterUser creates a client account with a hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, req dto.RegisterRequest) (*dto.UserDTO, error) {
	if err := s.ensureAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Username, req.Email, req.Password, auth.RoleClient)
	if err != nil {
		return nil, err
	}

	out := dto.NewUserDTO(user)
	return &out, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return unexpected(err)
	}
	if existing != nil {
		return apperror.Conflict(fmt.Sprintf("username '%s' already taken", username))
	}

	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return unexpected(err)
	}
	if existing != nil {
		return apperror.Conflict(fmt.Sprintf("email '%s' already registered", email))
	}
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, authorities ...string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, unexpected(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	for _, authority := range authorities {
		role, err := s.userRepo.FindOrCreateRole(ctx, authority)
		if err != nil {
			return nil, unexpected(err)
		}
		user.Roles = append(user.Roles, *role)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, apperror.Conflict("username or email already registered").WithError(err)
		}
		return nil, unexpected(fmt.Errorf("failed to register user: %w", err))
	}
	return user, nil
}

// EnsureAdmin creates the administrator account unless a user with that
// username exists already. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		if !existing.HasRole(auth.RoleAdmin) {
			s.log.Warn("Configured admin user exists without the admin role", zap.String("username", username))
		}
		return false, nil
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}
	if password == "" {
		return false, errors.New("admin password must not be empty")
	}

	if _, err := s.createUser(ctx, username, email, password, auth.RoleClient, auth.RoleAdmin); err != nil {
		return false, err
	}
	s.log.Info("Admin user created", zap.String("username", username))
	return true, nil
}

// LoginUser authenticates a user and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.log.Error("Login lookup failed", zap.String("username", username), zap.Error(err))
		}
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"roles":    user.Authorities(),
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, unexpected(fmt.Errorf("failed to generate token: %w", err))
	}

	return &dto.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}

// ValidateToken parses and validates a JWT, returning the caller it identifies.
func (s *AuthService) ValidateToken(tokenString string) (*auth.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("invalid token: missing user_id")
	}
	username, _ := claims["username"].(string)

	principal := &auth.Principal{UserID: int64(userID), Username: username}
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if role, ok := r.(string); ok {
				principal.Roles = append(principal.Roles, role)
			}
		}
	}
	return principal, nil
}
