package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestValidateAccessToken(t *testing.T) {
	token := signToken(t, &Claims{
		UserID:   "user-1",
		ClassID:  "class-1",
		SchoolID: "school-1",
		Role:     "teacher",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}, testSecret)

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("expected valid token, got error: %v", err)
	}
	if claims.UserID != "user-1" || claims.ClassID != "class-1" || claims.Role != "teacher" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	token := signToken(t, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, "other-secret")

	if _, err := ValidateAccessToken(token, testSecret); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	token := signToken(t, &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)

	if _, err := ValidateAccessToken(token, testSecret); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateAccessTokenMissingUserID(t *testing.T) {
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	if _, err := ValidateAccessToken(token, testSecret); err == nil {
		t.Fatal("expected error for token without user_id")
	}
}
