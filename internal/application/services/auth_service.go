package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/config"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles authentication operations on the sync backend
type AuthService struct {
	userRepo    ports.UserRepository
	sessionRepo ports.SessionRepository
	taskRepo    ports.TaskRepository
	projectRepo ports.ProjectRepository
	profileRepo ports.ProfileRepository
	jwtConfig   config.JWTConfig
	logger      *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo ports.UserRepository,
	sessionRepo ports.SessionRepository,
	taskRepo ports.TaskRepository,
	projectRepo ports.ProjectRepository,
	profileRepo ports.ProfileRepository,
	jwtConfig config.JWTConfig,
	logger *logger.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		profileRepo: profileRepo,
		jwtConfig:   jwtConfig,
		logger:      logger,
	}
}

// SignUp creates a new user account and returns an authenticated session.
func (s *AuthService) SignUp(ctx context.Context, req ports.SignUpRequest) (*ports.AuthResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("user with email %s already exists", req.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Seed the profile with the auth identity; email is read-only after
	// this point.
	profile := entities.DefaultProfile()
	profile.Email = user.Email
	if err := s.profileRepo.Upsert(ctx, user.ID, profile); err != nil {
		s.logger.Warn("Failed to seed profile", "error", err, "user_id", user.ID)
	}

	s.logger.Info("User registered", "user_id", user.ID, "email", user.Email)

	return s.issueSession(ctx, user)
}

// SignIn authenticates a user and returns a session token.
func (s *AuthService) SignIn(ctx context.Context, req ports.SignInRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("Sign-in attempt with unknown email", "email", req.Email)
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Sign-in attempt with invalid password", "email", req.Email, "user_id", user.ID)
		return nil, fmt.Errorf("invalid credentials")
	}

	s.logger.Info("User signed in", "user_id", user.ID, "email", user.Email)

	return s.issueSession(ctx, user)
}

// SignOut revokes the presented session token. The remote data is left
// untouched; clearing local state is the client's responsibility.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if err := s.sessionRepo.Revoke(ctx, hashToken(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// UpdatePassword changes the account password after verifying the
// current one. Other sessions stay valid; token lifetime bounds them.
func (s *AuthService) UpdatePassword(ctx context.Context, userID string, req ports.UpdatePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password updated", "user_id", userID)
	return nil
}

// ValidateToken validates a JWT and checks the session has not been
// revoked by sign-out.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	active, err := s.sessionRepo.Exists(ctx, hashToken(tokenString))
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !active {
		return nil, fmt.Errorf("session revoked")
	}

	return &ports.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

// DeleteAccount removes the user and every row the account owns.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.taskRepo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	if err := s.projectRepo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete projects: %w", err)
	}
	if err := s.profileRepo.DeleteForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if err := s.sessionRepo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("Account deleted", "user_id", userID)
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *entities.User) (*ports.AuthResponse, error) {
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	expiresAt := time.Now().Add(s.jwtConfig.ExpiresIn)
	if err := s.sessionRepo.Create(ctx, user.ID, hashToken(tokenString), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	user.PasswordHash = ""

	return &ports.AuthResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtConfig.ExpiresIn.Seconds()),
		User:        user,
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
