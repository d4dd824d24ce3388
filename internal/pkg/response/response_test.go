package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess_DefaultMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return Success(c, fiber.StatusAccepted, "", fiber.Map{"x": 1})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	b, _ := io.ReadAll(resp.Body)
	var body SemanticResponse
	require.NoError(t, json.Unmarshal(b, &body))
	assert.Equal(t, MessageAccepted, body.Message)
	assert.Equal(t, fiber.StatusAccepted, body.Status)
}

func TestError_InvalidStatus(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return Error(c, 42, "", nil)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestNewPaged(t *testing.T) {
	p := NewPaged[int](nil, 25, 2, 10)
	assert.Equal(t, []int{}, p.Items)
	assert.True(t, p.HasMore)

	p = NewPaged([]int{1}, 21, 3, 10)
	assert.False(t, p.HasMore)
}
