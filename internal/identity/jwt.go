// Package identity is the boundary to the external identity provider. The
// provider itself (sign-in flows, account management) is out of scope; this
// package only validates the tokens it mints and exposes the claims the
// moderation pipeline needs, including the admin role claim.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/requestcontext"
)

// Claims carried by access tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Service validates (and, for development and tests, issues) access tokens.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// IssueToken mints a signed token for the given user. Production deployments
// receive tokens from the identity provider; this keeps local development and
// tests self-contained.
func (s *Service) IssueToken(userID id.UserID, email, name string, admin bool, expiresIn time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		Name:  name,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token, returning the caller it names.
func (s *Service) ValidateToken(tokenString string) (requestcontext.User, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return requestcontext.User{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return requestcontext.User{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return requestcontext.User{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return requestcontext.User{
		ID:        id.UserID(claims.Subject),
		Email:     claims.Email,
		Name:      claims.Name,
		Moderator: claims.Admin,
	}, nil
}
