package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gymsnap/gymsnap/internal/domain"
)

// FirebaseAuthClient defines the interface for Firebase Auth operations.
// This allows mocking for tests. Firebase performs the passwordless
// email-link sign-in on the client; the server sees only the ID token.
type FirebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthService handles authentication and user registration
type AuthService struct {
	userRepo   domain.UserRepository
	authClient FirebaseAuthClient
	jwtSecret  string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo domain.UserRepository, authClient FirebaseAuthClient, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		authClient: authClient,
		jwtSecret:  jwtSecret,
	}
}

// LoginOrRegisterResponse contains the user and whether they were newly created
type LoginOrRegisterResponse struct {
	User      *domain.User
	Token     string
	IsNewUser bool
}

// LoginOrRegister verifies the Firebase email-link ID token, creates the
// user on first sign-in and returns an app session token
func (s *AuthService) LoginOrRegister(ctx context.Context, firebaseToken string) (*LoginOrRegisterResponse, error) {
	token, err := s.authClient.VerifyIDToken(ctx, firebaseToken)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("token is missing an email claim")
	}
	name, _ := token.Claims["name"].(string)
	if name == "" {
		name = email
	}

	existing, err := s.userRepo.GetByFirebaseUID(ctx, firebaseUID)

	// Pre-provisioned account: link by email on first token sight
	if errors.Is(err, domain.ErrNotFound) {
		emailUser, emailErr := s.userRepo.GetByEmail(ctx, email)
		if emailErr == nil && emailUser != nil {
			if emailUser.FirebaseUID != "" {
				return nil, fmt.Errorf("email already linked to different account")
			}
			if linkErr := s.userRepo.UpdateFirebaseUID(ctx, emailUser.ID, firebaseUID); linkErr != nil {
				return nil, fmt.Errorf("failed to link firebase account: %w", linkErr)
			}
			emailUser.FirebaseUID = firebaseUID
			existing = emailUser
			err = nil
		}
	}

	if err == nil && existing != nil {
		appToken, tokenErr := s.GenerateSessionToken(existing)
		if tokenErr != nil {
			return nil, fmt.Errorf("failed to generate token: %w", tokenErr)
		}
		return &LoginOrRegisterResponse{User: existing, Token: appToken}, nil
	}

	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	newUser := &domain.User{
		FirebaseUID: firebaseUID,
		Email:       email,
		Name:        name,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	appToken, err := s.GenerateSessionToken(newUser)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginOrRegisterResponse{User: newUser, Token: appToken, IsNewUser: true}, nil
}

// GenerateSessionToken mints the app-level JWT carried on subsequent requests
func (s *AuthService) GenerateSessionToken(user *domain.User) (string, error) {
	claims := domain.GymsnapClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
