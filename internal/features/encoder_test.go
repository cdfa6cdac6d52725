package features

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitCategoryEncoder(t *testing.T) {
	encoder := FitCategoryEncoder([]*string{
		domain.StringPtr("Snacks"),
		domain.StringPtr("Beverages"),
		nil,
		domain.StringPtr("Snacks"),
		domain.StringPtr("  "),
		domain.StringPtr("Dairy"),
	})

	assert.Equal(t, []string{"Beverages", "Dairy", "Snacks", "Unknown"}, encoder.Classes())
	assert.Equal(t, 4, encoder.Len())
}

func TestCategoryEncoder_RoundTrip(t *testing.T) {
	encoder := NewCategoryEncoder([]string{"Snacks", "Beverages", "Dairy"})

	for _, label := range []string{"Beverages", "Dairy", "Snacks"} {
		code, err := encoder.Encode(domain.StringPtr(label))
		require.NoError(t, err)

		decoded, err := encoder.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, label, decoded)
	}
}

func TestCategoryEncoder_UnknownCategory(t *testing.T) {
	encoder := NewCategoryEncoder([]string{"Snacks", "Beverages"})

	t.Run("unseen label", func(t *testing.T) {
		code, err := encoder.Encode(domain.StringPtr("Frozen"))
		require.Error(t, err)
		assert.Equal(t, 0, code)
		assert.True(t, errors.Is(err, domain.ErrUnknownCategory))

		var unknown *domain.UnknownCategoryError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "Frozen", unknown.Category)
	})

	t.Run("missing category when Unknown was never fit", func(t *testing.T) {
		_, err := encoder.Encode(nil)
		assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
	})

	t.Run("missing category when Unknown was fit", func(t *testing.T) {
		withUnknown := NewCategoryEncoder([]string{"Snacks", UnknownCategory})
		code, err := withUnknown.Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, 1, code)
	})

	t.Run("decode out of range", func(t *testing.T) {
		_, err := encoder.Decode(2)
		assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
		_, err = encoder.Decode(-1)
		assert.Error(t, err)
	})
}

func TestCategoryEncoder_DeduplicatesClasses(t *testing.T) {
	encoder := NewCategoryEncoder([]string{"b", "a", "b", "a", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, encoder.Classes())
}

func TestCategoryEncoder_JSON(t *testing.T) {
	encoder := NewCategoryEncoder([]string{"Snacks", "Beverages"})

	data, err := json.Marshal(encoder)
	require.NoError(t, err)
	assert.JSONEq(t, `["Beverages","Snacks"]`, string(data))

	var restored CategoryEncoder
	require.NoError(t, json.Unmarshal(data, &restored))

	code, err := restored.Encode(domain.StringPtr("Snacks"))
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}
