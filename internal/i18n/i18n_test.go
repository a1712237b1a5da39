package i18n

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "Product not found", T("en", "product.not_found"))
	assert.Equal(t, "Invalid input", T("en", KeyValidationInvalid, "input"))
	assert.NotEqual(t, T("en", KeyAuthRequired), T("ta", KeyAuthRequired))
	assert.Equal(t, T("en", KeyAuthRequired), T("fr", KeyAuthRequired))
	assert.Equal(t, "no.such.key", T("en", "no.such.key"))
	assert.Equal(t, []string{"en", "ta"}, GetSupportedLanguages())
	assert.True(t, Supported("ta"))
	assert.False(t, Supported("fr"))
}

func TestLocalesDefineTheSameKeys(t *testing.T) {
	load := func(name string) map[string]string {
		data, err := localeFS.ReadFile("locales/" + name)
		require.NoError(t, err)
		var m map[string]string
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	en, ta := load("en.json"), load("ta.json")
	for key := range en {
		assert.Contains(t, ta, key)
	}
	assert.Len(t, ta, len(en))

	for _, key := range []string{
		KeyNotifySellerRequestCreated, KeyNotifyCancellationRequested, KeyNotifyProductSold,
		KeyJourneyDelivered, KeyIdempotencyInProgress, KeyDuplicateRequest,
	} {
		assert.Contains(t, en, key)
	}
}
