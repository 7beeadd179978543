package auth

import (
	"errors"
	"time"

	"github.com/atlasbank/atlasbank/internal/config"
)

// Roles carried in the token's role claim. Middleware gates routes on them.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// ErrInvalidToken covers malformed, tampered, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Service issues and refreshes signed tokens for customers and admins.
type Service struct {
	cfg config.Config
}

func NewService(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// IssueCustomer signs an access/refresh pair for the customer.
func (s *Service) IssueCustomer(customerID string) (TokenPair, error) {
	return s.issue(customerID, RoleCustomer)
}

// IssueAdmin signs an access/refresh pair for the admin.
func (s *Service) IssueAdmin(adminID string) (TokenPair, error) {
	return s.issue(adminID, RoleAdmin)
}

func (s *Service) issue(subject, role string) (TokenPair, error) {
	access, accessExp, err := s.sign(subject, role, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(subject, role, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(subject, role, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token and issues a new access token carrying
// the same subject and role.
func (s *Service) Refresh(refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, ErrInvalidToken
	}
	exp, _ := claims["exp"].(float64)
	if time.Now().Unix() >= int64(exp) {
		return "", 0, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || (role != RoleCustomer && role != RoleAdmin) {
		return "", 0, ErrInvalidToken
	}

	access, _, err := s.sign(sub, role, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}
