package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/voicedesk/callcenter-api/internal/api/metrics"
	"github.com/voicedesk/callcenter-api/internal/core/domain"
	"github.com/voicedesk/callcenter-api/internal/core/ports"
)

// TokenService signs and verifies HS256 tokens carrying identity claims.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	registry   ports.TokenRegistry
	log        zerolog.Logger
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, registry ports.TokenRegistry, log zerolog.Logger) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		registry:   registry,
		log:        log,
	}
}

func (s *TokenService) IssueAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := domain.AccessClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    domain.TokenIssuer,
			Audience:  jwt.ClaimStrings{domain.TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	return signed, nil
}

// IssueRefreshToken signs a refresh token and registers it before returning,
// so the token is revocable from the moment any caller can see it.
func (s *TokenService) IssueRefreshToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := domain.RefreshClaims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: domain.RefreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    domain.TokenIssuer,
			Audience:  jwt.ClaimStrings{domain.TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	s.registry.Register(signed)
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return signed, nil
}

func (s *TokenService) VerifyAccessToken(token string) (*domain.AccessClaims, error) {
	claims := &domain.AccessClaims{}
	if err := s.parse(token, claims); err != nil {
		s.log.Debug().Err(err).Msg("access token rejected")
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) VerifyRefreshToken(token string) (*domain.RefreshClaims, error) {
	claims := &domain.RefreshClaims{}
	if err := s.parse(token, claims); err != nil {
		s.log.Debug().Err(err).Msg("refresh token rejected")
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != domain.RefreshTokenType {
		s.log.Debug().Msg("refresh token rejected: wrong token type")
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// parse validates signature, expiry, issuer and audience. The registry is
// deliberately not consulted here; access tokens are never registered and
// the refresh flow does its own registry lookup.
func (s *TokenService) parse(token string, claims jwt.Claims) error {
	tkn, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithIssuer(domain.TokenIssuer),
		jwt.WithAudience(domain.TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return s.secret, nil
}
