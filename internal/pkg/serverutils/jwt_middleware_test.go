package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func newProtectedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(NewJwtMiddleware(secret))
	app.Get("/whoami", func(ctx *fiber.Ctx) error {
		userId, _ := ctx.Locals("user_id").(string)
		return ctx.SendString(userId)
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJwtMiddleware(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic abcdef",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.jwt",
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			authHeader: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"user_id": "u-1", "exp": exp}),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": "u-1", "exp": exp}),
			wantStatus: fiber.StatusOK,
			wantBody:   "u-1",
		},
		{
			name:       "missing user_id claim",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"exp": exp}),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "non-string user_id claim",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": 42, "exp": exp}),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "empty user_id claim",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"user_id": "", "exp": exp}),
			wantStatus: fiber.StatusUnauthorized,
		},
	}

	app := newProtectedApp(testSecret)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body := make([]byte, 64)
				n, _ := resp.Body.Read(body)
				assert.Equal(t, tt.wantBody, string(body[:n]))
			}
		})
	}
}
