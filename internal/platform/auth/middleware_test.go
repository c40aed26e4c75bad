package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinrec/clinrec/internal/access"
)

var testSigningKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runMiddleware(t *testing.T, authHeader string) (access.Actor, int) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got access.Actor
	mw := JWTMiddleware(JWTConfig{SigningKey: testSigningKey})
	handler := mw(func(c echo.Context) error {
		got = ActorFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return got, he.Code
		}
		t.Fatalf("unexpected error: %v", err)
	}
	return got, rec.Code
}

func TestJWTMiddlewareBindsActor(t *testing.T) {
	id := uuid.New()
	centre := uuid.New()
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:    "secretary",
		Centres: []string{centre.String()},
	})

	actor, code := runMiddleware(t, "Bearer "+token)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if actor.ID != id {
		t.Errorf("expected actor id %s, got %s", id, actor.ID)
	}
	if actor.Role != access.RoleSecretary {
		t.Errorf("expected secretary role, got %s", actor.Role)
	}
	if len(actor.Centres) != 1 || actor.Centres[0] != centre {
		t.Errorf("expected centre %s, got %v", centre, actor.Centres)
	}
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	_, code := runMiddleware(t, "")
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
}

func TestJWTMiddlewareBadToken(t *testing.T) {
	_, code := runMiddleware(t, "Bearer not-a-token")
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
}

func TestJWTMiddlewareExpiredToken(t *testing.T) {
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: "doctor",
	})
	_, code := runMiddleware(t, "Bearer "+token)
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", code)
	}
}

func TestJWTMiddlewareReusesJWKSAcrossRequests(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		json.NewEncoder(w).Encode(JWKSResponse{Keys: []JWKSKey{{
			Kty: "RSA",
			Kid: "k1",
			N:   base64.RawURLEncoding.EncodeToString(priv.PublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString([]byte{1, 0, 1}),
		}}})
	}))
	defer srv.Close()

	e := echo.New()
	mw := JWTMiddleware(JWTConfig{JWKSURL: srv.URL})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 2; i++ {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   uuid.New().String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "doctor",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		token.Header["kid"] = "k1"
		signed, err := token.SignedString(priv)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/patients", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		if err := handler(e.NewContext(req, rec)); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}

	if fetches != 1 {
		t.Fatalf("expected one JWKS fetch across requests, got %d", fetches)
	}
}

func TestActorFromContextDefaultsToAnonymous(t *testing.T) {
	actor := ActorFromContext(context.Background())
	if actor.Authenticated() {
		t.Error("missing actor should be anonymous")
	}
}

func TestClaimsActorUnknownRolePassesThrough(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.New().String()},
		Role:             "janitor",
	}
	actor := claims.Actor()
	if actor.HasProfile() {
		t.Error("unknown role must not map to a valid profile")
	}
}
