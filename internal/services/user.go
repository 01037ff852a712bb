package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitfeed-backend/internal/models"
	"fitfeed-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles accounts, credentials and tokens
type UserService struct {
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	postRepo   *repository.PostRepository
	jwtSecret  string
	tokenTTL   time.Duration
}

// NewUserService creates a new user service
func NewUserService(
	userRepo *repository.UserRepository,
	followRepo *repository.FollowRepository,
	postRepo *repository.PostRepository,
	jwtSecret string,
	tokenTTL time.Duration,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
	}
}

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Height   *float64 `json:"height"`
	Weight   *float64 `json:"weight"`
	BodyFat  *float64 `json:"body_fat"`
}

// SignInRequest is the body of POST /api/signin
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInResponse carries the user and a bearer token
type SignInResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Profile is a user with their posts and follow lists
type Profile struct {
	User      *models.User   `json:"user"`
	Posts     []*models.Post `json:"posts"`
	Following []string       `json:"following"`
	Followers []string       `json:"followers"`
}

// CreateUser registers a new account
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, invalid("email, username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Height:       req.Height,
		Weight:       req.Weight,
		BodyFat:      req.BodyFat,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// SignIn checks credentials and issues a token
func (s *UserService) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, invalid("username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &SignInResponse{User: user, Token: token}, nil
}

// GetByID returns a user or ErrUserNotFound
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetByUsername returns a user or ErrUserNotFound
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetProfile returns the user, their posts and both follow lists
func (s *UserService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.FollowingUsernames(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.FollowerUsernames(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Posts: posts, Following: following, Followers: followers}, nil
}

// Rename changes the username of target. Only the account owner may do it.
func (s *UserService) Rename(ctx context.Context, actorID int64, target, newUsername string) (*models.User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return nil, invalid("username is required")
	}

	user, err := s.GetByUsername(ctx, target)
	if err != nil {
		return nil, err
	}
	if user.ID != actorID {
		return nil, ErrForbidden
	}

	if err := s.userRepo.UpdateUsername(ctx, user.ID, newUsername); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.Username = newUsername
	return user, nil
}

// SetPushToken stores or clears the APNs device token of target
func (s *UserService) SetPushToken(ctx context.Context, actorID int64, target, token string) error {
	user, err := s.GetByUsername(ctx, target)
	if err != nil {
		return err
	}
	if user.ID != actorID {
		return ErrForbidden
	}

	var pushToken *string
	if token = strings.TrimSpace(token); token != "" {
		pushToken = &token
	}
	if err := s.userRepo.UpdatePushToken(ctx, user.ID, pushToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	// numeric claims decode as float64
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return int64(userID), nil
}
