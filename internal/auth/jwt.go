package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType tags a token with the operations it may authorize.
type TokenType string

const (
	// TokenTypeAccess authorizes ordinary API operations.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh authorizes only minting a new token pair.
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrTokenNotYetValid = errors.New("token not active yet")
	ErrTokenInvalid     = errors.New("token is invalid")
)

// Claims is the signed payload of every issued token. Email is only set
// on access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64     `json:"id"`
	Email  string    `json:"email,omitempty"`
	Type   TokenType `json:"type"`
}

// TokenPair bundles the two tokens handed to a client after login,
// registration, or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenIssuer creates and verifies HMAC-signed bearer tokens. The issuer
// claim is pinned so tokens signed by another deployment never validate
// here even if the secret were reused.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken encodes the user's id and email with type=access.
func (i *TokenIssuer) IssueAccessToken(userID int64, email string) (string, error) {
	return i.sign(Claims{
		RegisteredClaims: i.registered(i.accessTTL),
		UserID:           userID,
		Email:            email,
		Type:             TokenTypeAccess,
	})
}

// IssueRefreshToken encodes only the user's id with type=refresh.
func (i *TokenIssuer) IssueRefreshToken(userID int64) (string, error) {
	return i.sign(Claims{
		RegisteredClaims: i.registered(i.refreshTTL),
		UserID:           userID,
		Type:             TokenTypeRefresh,
	})
}

// IssueTokenPair mints both tokens for a user.
func (i *TokenIssuer) IssueTokenPair(userID int64, email string) (*TokenPair, error) {
	access, err := i.IssueAccessToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := i.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    i.accessTTL,
	}, nil
}

// VerifyToken checks the signature, expiry window and issuer claim, and
// returns the decoded claims.
func (i *TokenIssuer) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// DecodeUnverified returns the claims without checking the signature.
// Diagnostic use only; never a basis for authorization.
func (i *TokenIssuer) DecodeUnverified(tokenString string) *Claims {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

func (i *TokenIssuer) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
