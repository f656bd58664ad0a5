package auth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTValidator validates RS256 customer tokens
type JWTValidator struct {
	publicKey *rsa.PublicKey
	issuer    string
	now       func() time.Time
}

// JWTOption customises a JWTValidator
type JWTOption func(*JWTValidator)

// WithIssuer requires the iss claim to equal issuer
func WithIssuer(issuer string) JWTOption {
	return func(v *JWTValidator) { v.issuer = issuer }
}

// WithClock overrides the time source used for exp/iat/nbf checks
func WithClock(now func() time.Time) JWTOption {
	return func(v *JWTValidator) { v.now = now }
}

// NewJWTValidator creates a new JWT validator from PEM string
func NewJWTValidator(publicKeyPEM string, opts ...JWTOption) (*JWTValidator, error) {
	if publicKeyPEM == "" {
		return nil, fmt.Errorf("public key PEM is required")
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block containing public key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not an RSA key")
	}

	v := &JWTValidator{
		publicKey: rsaPublicKey,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// NewJWTValidatorFromFile creates a new JWT validator from a PEM file
func NewJWTValidatorFromFile(publicKeyPath string, opts ...JWTOption) (*JWTValidator, error) {
	publicKeyPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	return NewJWTValidator(string(publicKeyPEM), opts...)
}

// Validate validates a JWT token and returns the customer ID
func (v *JWTValidator) Validate(ctx context.Context, token string) (customerID string, err error) {
	token = strings.TrimSpace(ExtractTokenFromAuthHeader(token))
	if token == "" {
		return "", fmt.Errorf("empty token")
	}

	// Validate token length (basic sanity check)
	if len(token) < 10 {
		return "", fmt.Errorf("token too short")
	}

	// Time-based claims are checked in validateClaims against v.now.
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation())

	if err != nil {
		return "", fmt.Errorf("failed to parse JWT token: %w", err)
	}

	if !parsedToken.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("failed to extract claims from token")
	}

	if err := v.validateClaims(claims); err != nil {
		return "", fmt.Errorf("claim validation failed: %w", err)
	}

	customerID, ok = claims["sub"].(string)
	if !ok {
		customerID, ok = claims["customer_id"].(string)
		if !ok {
			return "", fmt.Errorf("customer ID not found in token claims")
		}
	}

	if strings.TrimSpace(customerID) == "" {
		return "", fmt.Errorf("customer ID is empty")
	}

	return customerID, nil
}

func (v *JWTValidator) validateClaims(claims jwt.MapClaims) error {
	now := v.now()

	if exp, ok := claims["exp"].(float64); ok {
		expTime := time.Unix(int64(exp), 0)
		if now.After(expTime) {
			return fmt.Errorf("token has expired at %v", expTime)
		}
	} else {
		return fmt.Errorf("expiration claim (exp) is missing")
	}

	if iat, ok := claims["iat"].(float64); ok {
		iatTime := time.Unix(int64(iat), 0)
		// 5 minute tolerance for clock skew
		if now.Before(iatTime.Add(-5 * time.Minute)) {
			return fmt.Errorf("token issued in the future: %v", iatTime)
		}
	}

	if nbf, ok := claims["nbf"].(float64); ok {
		nbfTime := time.Unix(int64(nbf), 0)
		if now.Before(nbfTime) {
			return fmt.Errorf("token not valid until %v", nbfTime)
		}
	}

	if v.issuer != "" {
		if iss, _ := claims["iss"].(string); iss != v.issuer {
			return fmt.Errorf("unexpected issuer %q", iss)
		}
	}

	return nil
}
