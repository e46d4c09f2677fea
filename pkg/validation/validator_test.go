package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name" validate:"required,max=5"`
	Email string  `json:"email" validate:"required,email"`
	Age   int     `json:"age" validate:"gte=0,lte=150"`
	IDs   []int64 `json:"ids" validate:"min=1,dive,gt=0"`
}

func validate(t *testing.T, s sample) map[string]string {
	t.Helper()
	v := validator.New()
	err := v.Struct(s)
	require.Error(t, err)
	return ToDetails(err)
}

func TestToDetailsNil(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}

func TestToDetailsJSONErrors(t *testing.T) {
	var target struct {
		N int `json:"n"`
	}
	err := json.Unmarshal([]byte(`{"n": "not a number"}`), &target)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{`), &target)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestToDetailsValidationMessages(t *testing.T) {
	details := validate(t, sample{Email: "nope", Age: 200})

	assert.Equal(t, "is required", details["Name"])
	assert.Equal(t, "must be a valid email", details["Email"])
	assert.Equal(t, "must be less than or equal to 150", details["Age"])
	assert.Equal(t, "must contain at least 1 items", details["IDs"])
}

func TestToDetailsSliceElement(t *testing.T) {
	details := validate(t, sample{
		Name:  "ok",
		Email: "a@b.com",
		IDs:   []int64{1, 0},
	})
	// the failing element is reported with its index
	found := false
	for field, msg := range details {
		if msg == "must be greater than 0" {
			assert.Contains(t, field, "IDs")
			found = true
		}
	}
	assert.True(t, found, "expected a gt failure for the zero element, got %v", details)
}

func TestToDetailsUnknownError(t *testing.T) {
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(assert.AnError))
}
