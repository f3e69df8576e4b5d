package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeVerifier(ctx context.Context, token string) (uint, string, error) {
	switch token {
	case "good-token":
		return 7, "jti-7", nil
	case "zero-admin":
		return 0, "jti-0", nil
	default:
		return 0, "", errors.New("bad token")
	}
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(fakeVerifier), func(c *fiber.Ctx) error {
		ctxAdmin, _ := c.UserContext().Value(AdminIDKey).(uint)
		return c.JSON(fiber.Map{
			"adminID": AdminID(c),
			"tokenID": c.Locals(LocalTokenID),
			"ctx":     ctxAdmin,
		})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer good-token",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Lowercase Scheme",
			authHeader:     "bearer good-token",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing Header",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Authorization header required",
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid authorization header format",
		},
		{
			name:           "Rejected Token",
			authHeader:     "Bearer nope",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token",
		},
		{
			name:           "Token Without Admin",
			authHeader:     "Bearer zero-admin",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, float64(7), body["adminID"])
				assert.Equal(t, "jti-7", body["tokenID"])
				assert.Equal(t, float64(7), body["ctx"])
				return
			}
			assert.Equal(t, tt.expectedError, body["error"])
			assert.Equal(t, "UNAUTHORIZED", body["code"])
		})
	}
}
