package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTService emite y valida los tokens con los que el adaptador del chat llama a la API.
type JWTService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked TokenRevocationStore
}

type AdapterClaims struct {
	AdapterID string `json:"aid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

const adapterTokenType = "adapter"

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
	ErrJWTRevoked = errors.New("jwt revoked")
)

func NewJWTService(secret, issuer string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = "distrust-bot"
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
	}
}

// WithRevocations activa la lista de tokens revocados. nil la desactiva.
func (s *JWTService) WithRevocations(store TokenRevocationStore) *JWTService {
	s.revoked = store
	return s
}

// IssueAdapterToken firma un token para el adaptador adapterID.
func (s *JWTService) IssueAdapterToken(adapterID string) (string, time.Time, error) {
	adapterID = strings.TrimSpace(adapterID)
	if len(s.secret) == 0 || adapterID == "" {
		return "", time.Time{}, ErrJWTInvalid
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := AdapterClaims{
		AdapterID: adapterID,
		TokenType: adapterTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   adapterID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *JWTService) ParseAdapterToken(tokenString string) (AdapterClaims, error) {
	if len(s.secret) == 0 {
		return AdapterClaims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return AdapterClaims{}, ErrJWTInvalid
	}
	var claims AdapterClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AdapterClaims{}, ErrJWTExpired
		}
		return AdapterClaims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return AdapterClaims{}, ErrJWTInvalid
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(claims.ID)
		if err != nil {
			return AdapterClaims{}, err
		}
		if revoked {
			return AdapterClaims{}, ErrJWTRevoked
		}
	}
	return claims, nil
}

// RevokeAdapterToken invalida un token ya emitido hasta su expiración natural.
func (s *JWTService) RevokeAdapterToken(tokenString string) error {
	if s.revoked == nil {
		return errors.New("token revocation not configured")
	}
	claims, err := s.ParseAdapterToken(tokenString)
	if err != nil {
		return err
	}
	ttl := s.ttl
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.revoked.Revoke(claims.ID, ttl)
}

func (s *JWTService) isValidClaims(claims AdapterClaims) bool {
	if claims.TokenType != adapterTokenType {
		return false
	}
	if strings.TrimSpace(claims.AdapterID) == "" || claims.Subject != claims.AdapterID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
