package services

import (
	"context"
	"errors"
	"time"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/store"
	"notesnexus-backend/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserService struct {
	users store.UserStore
}

func NewUserService(users store.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID, user.DisplayName)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:       token,
		UserID:      user.ID,
		DisplayName: user.DisplayName,
	}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUser(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, req.DisplayName, req.AvatarURL); err != nil {
		return nil, err
	}
	return s.users.GetUser(ctx, userID)
}

// RequestForceLogout sets the remote force-logout flag on a user record. The
// session watcher observing the flag clears it and then terminates the
// session.
func (s *UserService) RequestForceLogout(ctx context.Context, userID string) error {
	return s.users.SetForceLogout(ctx, userID, true)
}

// ConsumeForceLogout reports whether a force logout was requested, clearing
// the flag before the caller acts on it so a failed sign-out cannot loop.
func (s *UserService) ConsumeForceLogout(ctx context.Context, userID string) (bool, error) {
	flag, err := s.users.ForceLogoutFlag(ctx, userID)
	if err != nil || !flag {
		return false, err
	}
	if err := s.users.SetForceLogout(ctx, userID, false); err != nil {
		utils.LogError(err, "clear force-logout flag")
		// Do not act on the flag until the clear has landed.
		return false, err
	}
	return true, nil
}

func GenerateJWT(userID, displayName string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":      userID,
		"display_name": displayName,
		"exp":          time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(utils.GetEnv("JWT_SECRET", "secret")))
}

func ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(utils.GetEnv("JWT_SECRET", "secret")), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
