package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token subjects distinguish the three token kinds this service issues.
const (
	subjectAdmin    = "admin"
	subjectAdminMFA = "admin-mfa"
	subjectCompany  = "company"
)

// ErrInvalidToken indicates a token that failed parsing or validation.
var ErrInvalidToken = errors.New("security: invalid token")

// AdminClaims carry the authenticated admin identity.
type AdminClaims struct {
	AdminID uint64 `json:"admin_id"`
	jwt.RegisteredClaims
}

// CompanyClaims carry the authenticated company identity.
type CompanyClaims struct {
	CompanyID uint64 `json:"company_id"`
	jwt.RegisteredClaims
}

// SignAdminToken issues a full admin session token.
func SignAdminToken(secret string, adminID uint64, expiry time.Duration) (string, error) {
	return signAdmin(secret, adminID, expiry, subjectAdmin)
}

// SignAdminMFAToken issues a short-lived token that only completes a TOTP
// login challenge.
func SignAdminMFAToken(secret string, adminID uint64) (string, error) {
	return signAdmin(secret, adminID, 5*time.Minute, subjectAdminMFA)
}

func signAdmin(secret string, adminID uint64, expiry time.Duration, subject string) (string, error) {
	now := time.Now().UTC()
	claims := AdminClaims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign admin token: %w", err)
	}
	return signed, nil
}

// ParseAdminToken validates a full admin session token.
func ParseAdminToken(secret, raw string) (*AdminClaims, error) {
	return parseAdmin(secret, raw, subjectAdmin)
}

// ParseAdminMFAToken validates a pending TOTP challenge token.
func ParseAdminMFAToken(secret, raw string) (*AdminClaims, error) {
	return parseAdmin(secret, raw, subjectAdminMFA)
}

func parseAdmin(secret, raw, subject string) (*AdminClaims, error) {
	var claims AdminClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject != subject || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// SignCompanyToken issues a company operator session token.
func SignCompanyToken(secret string, companyID uint64, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := CompanyClaims{
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectCompany,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("security: sign company token: %w", err)
	}
	return signed, nil
}

// ParseCompanyToken validates a company operator session token.
func ParseCompanyToken(secret, raw string) (*CompanyClaims, error) {
	var claims CompanyClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject != subjectCompany || claims.CompanyID == 0 {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
