package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Handle string `json:"handle" validate:"required,max=8"`
	Text   string `json:"text"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sampleRequest{Handle: "tg:1"}))

	err := ValidateRequest(&sampleRequest{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, map[string]string{"handle": "is required"}, ve.Fields)

	err = ValidateRequest(&sampleRequest{Handle: "123456789"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "must be at most 8 characters", ve.Fields["handle"])
}

func decode(t *testing.T, body io.Reader) Response[any] {
	t.Helper()
	var res Response[any]
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/validation", func(ctx *fiber.Ctx) error {
		return ValidateRequest(&sampleRequest{})
	})
	app.Get("/fiber", func(ctx *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "no such thing")
	})
	app.Get("/plain", func(ctx *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/ok", func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("fine", []string{"a"}))
	})

	tests := []struct {
		path    string
		status  int
		success bool
		message string
	}{
		{"/validation", 400, false, "Invalid request"},
		{"/fiber", 404, false, "no such thing"},
		{"/plain", 500, false, "boom"},
		{"/ok", 200, true, "fine"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			res := decode(t, resp.Body)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.status, res.Code)
		})
	}
}
