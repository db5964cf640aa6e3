package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"aid-portal/internal/adapters/http/middleware"
	"aid-portal/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksResponse struct {
	Keys []jwk `json:"keys"`
}

type jwkCache struct {
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
	ttl       time.Duration
	url       string
	client    *http.Client
}

func newJWKCache(url string, ttl time.Duration) *jwkCache {
	return &jwkCache{
		keys:   map[string]*rsa.PublicKey{},
		ttl:    ttl,
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *jwkCache) keyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	if key, ok := c.keys[kid]; ok && time.Now().Before(c.expiresAt) {
		c.mu.RUnlock()
		return key, nil
	}
	c.mu.RUnlock()

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[kid]
	if !ok {
		return nil, errors.New("jwk key not found")
	}
	return key, nil
}

func (c *jwkCache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("unable to fetch jwks")
	}
	var parsed jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}
	keys := make(map[string]*rsa.PublicKey, len(parsed.Keys))
	for _, key := range parsed.Keys {
		if key.Kty != "RSA" || key.Kid == "" || key.N == "" || key.E == "" {
			continue
		}
		pubKey, err := rsaFromJWK(key.N, key.E)
		if err != nil {
			continue
		}
		keys[key.Kid] = pubKey
	}
	if len(keys) == 0 {
		return errors.New("no valid jwk keys")
	}
	c.mu.Lock()
	c.keys = keys
	c.expiresAt = time.Now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

func rsaFromJWK(nB64, eB64 string) (*rsa.PublicKey, error) {
	nRaw, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eRaw, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	var eInt int
	for _, b := range eRaw {
		eInt = eInt<<8 + int(b)
	}
	if eInt == 0 {
		return nil, errors.New("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nRaw), E: eInt}, nil
}

const roleClaim = "custom:role"

type CognitoMiddleware struct {
	issuer string
	cache  *jwkCache
}

func NewCognitoMiddleware(userPoolID, region string) *CognitoMiddleware {
	issuer := "https://cognito-idp." + region + ".amazonaws.com/" + userPoolID
	return newCognitoMiddleware(issuer, issuer+"/.well-known/jwks.json")
}

func newCognitoMiddleware(issuer, jwksURL string) *CognitoMiddleware {
	return &CognitoMiddleware{
		issuer: issuer,
		cache:  newJWKCache(jwksURL, 15*time.Minute),
	}
}

// Handler verifies the bearer token and attaches the reviewer identity from
// its email, name and custom:role claims.
func (m *CognitoMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization token"})
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if tokenString == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization token"})
		}
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			kid, ok := token.Header["kid"].(string)
			if !ok || kid == "" {
				return nil, errors.New("missing kid")
			}
			return m.cache.keyForKid(c.Request().Context(), kid)
		}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithIssuer(m.issuer))
		if err != nil || !token.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": domain.ErrInvalidInput.Error()})
		}
		actor := domain.Actor{}
		actor.Email, _ = claims["email"].(string)
		actor.Name, _ = claims["name"].(string)
		if raw, _ := claims[roleClaim].(string); raw != "" {
			role, err := domain.ParseRole(raw)
			if err != nil {
				return c.JSON(http.StatusForbidden, map[string]string{"error": domain.ErrPermissionDeny.Error()})
			}
			actor.Role = role
		}
		c.Set("user_id", sub)
		middleware.SetActor(c, actor)
		return next(c)
	}
}
