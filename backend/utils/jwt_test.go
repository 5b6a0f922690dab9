package utils

import (
	"net/http/httptest"
	"testing"

	"lms/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUserIDFromToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	token, err := GenerateJWTToken(42, cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		userID, err := ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return Unauthorized(c, err.Error())
		}
		return c.JSON(fiber.Map{"user_id": userID})
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "bare token", header: token, status: fiber.StatusOK},
		{name: "bearer", header: "Bearer " + token, status: fiber.StatusOK},
		{name: "token scheme", header: "Token " + token, status: fiber.StatusOK},
		{name: "missing", header: "", status: fiber.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestExtractUserIDRejectsForeignSecret(t *testing.T) {
	token, err := GenerateJWTToken(7, &config.Config{JWTSecret: "other"})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := ExtractUserIDFromToken(c, &config.Config{JWTSecret: "testsecret"})
		assert.Error(t, err)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", token)
	_, err = app.Test(req)
	require.NoError(t, err)
}
