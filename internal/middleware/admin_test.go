package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/magma-incinerator/backend/internal/config"
)

func newAdminApp(token string) *fiber.App {
	app := fiber.New()
	app.Use(AdminAuthMiddleware(&config.Config{AdminAPIToken: token}))
	app.Post("/adjust", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
	}{
		{"valid token", "secret", "Bearer secret", fiber.StatusOK},
		{"wrong token", "secret", "Bearer nope", fiber.StatusUnauthorized},
		{"missing header", "secret", "", fiber.StatusUnauthorized},
		{"not bearer", "secret", "Basic secret", fiber.StatusUnauthorized},
		{"disabled", "", "Bearer anything", fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAdminApp(tt.configured)
			req := httptest.NewRequest("POST", "/adjust", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
