package app

import (
	"context"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"powercars-survey-service/internal/domain"
)

// AccountRepository stores dashboard login accounts.
type AccountRepository interface {
	// AccountByUsername returns the account, or domain.ErrAccountNotFound.
	AccountByUsername(ctx context.Context, username string) (*domain.Account, error)
	CreateAccount(ctx context.Context, account *domain.Account) error
}

// AuthClaims is the JWT payload carried by dashboard bearer tokens.
type AuthClaims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult pairs the signed token with the account it identifies.
type LoginResult struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"user"`
}

// AuthService issues and validates dashboard tokens.
type AuthService struct {
	accounts AccountRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(accounts AccountRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		accounts: accounts,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// EnsureAdmin seeds the default administrator account if it does not exist.
// Called once at startup so the dashboard is reachable on a fresh database.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}

	_, err := s.accounts.AccountByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if err != domain.ErrAccountNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := &domain.Account{
		Username:     username,
		Email:        "admin@powercars.com",
		PasswordHash: string(hash),
		Role:         "admin",
		FullName:     "Administrador PowerCars",
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return err
	}
	log.Printf("seeded default admin account %q", username)
	return nil
}

// Login checks the credentials and returns a signed bearer token. Bad
// username, bad password, and disabled accounts all collapse into
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	account, err := s.accounts.AccountByUsername(ctx, username)
	if err == domain.ErrAccountNotFound {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !account.IsActive {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return LoginResult{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	claims := AuthClaims{
		UserID:   account.ID,
		Username: account.Username,
		Role:     account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Account: account}, nil
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
