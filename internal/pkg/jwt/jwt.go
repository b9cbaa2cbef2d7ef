package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	ClaimUserID   = "user_id"
	ClaimTenantID = "tenant_id"
	ClaimRole     = "role"
	ClaimType     = "type"

	TokenTypeAccess = "access"
)

// Claims identifies the caller of an authenticated request.
type Claims struct {
	UserID   string
	TenantID string
	Role     string
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		ClaimUserID:   claims.UserID,
		ClaimTenantID: claims.TenantID,
		ClaimRole:     claims.Role,
		ClaimType:     TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

// FromMap extracts Claims from a decoded token claim set. ok is false when
// the token is not an access token or carries no user id.
func FromMap(m map[string]interface{}) (Claims, bool) {
	tokenType, _ := m[ClaimType].(string)
	if tokenType != TokenTypeAccess {
		return Claims{}, false
	}
	userID, _ := m[ClaimUserID].(string)
	if userID == "" {
		return Claims{}, false
	}
	tenantID, _ := m[ClaimTenantID].(string)
	role, _ := m[ClaimRole].(string)
	return Claims{UserID: userID, TenantID: tenantID, Role: role}, true
}
