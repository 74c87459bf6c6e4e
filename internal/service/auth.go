package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/talk-to-your-terms/tosapi/internal/domain"
)

// tokenTTL is how long an issued session token stays valid.
const tokenTTL = 24 * time.Hour

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// AuthSession is what register and login hand back to the client.
type AuthSession struct {
	Token  string
	UserID int64
	Email  string
}

// AuthService issues and verifies HS256 session tokens for registered
// accounts.
type AuthService struct {
	users  UserRepo
	secret []byte
	now    func() time.Time
}

func NewAuthService(users UserRepo, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), now: time.Now}
}

// Register creates an account and logs it in. The email is lowercased so
// lookups stay case-insensitive.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrEmailRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to hash password", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.issueSession(id, email)
}

// Login checks credentials and refreshes last_login. A missing account and
// a wrong password fail identically so the endpoint does not leak which
// emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrEmailRequired
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to update last login", err)
	}

	return s.issueSession(user.ID, user.Email)
}

// Verify parses and validates a session token, returning the subject and
// email claims. Expired, malformed, or wrongly signed tokens all come back
// as unauthorized.
func (s *AuthService) Verify(tokenString string) (userID string, email string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", "", domain.NewDomainError(domain.ErrCodeUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", domain.NewDomainError(domain.ErrCodeUnauthorized, "invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	email, _ = claims["email"].(string)
	if sub == "" {
		return "", "", domain.NewDomainError(domain.ErrCodeUnauthorized, "invalid token claims")
	}
	return sub, email, nil
}

func (s *AuthService) issueSession(id int64, email string) (*AuthSession, error) {
	now := s.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   strconv.FormatInt(id, 10),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to sign token", err)
	}
	return &AuthSession{Token: signed, UserID: id, Email: email}, nil
}
