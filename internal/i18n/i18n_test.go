package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Simpan", Translate(Indonesian, "action.save"))
	assert.Equal(t, "Save", Translate(English, "action.save"))

	// missing in id falls back to en
	assert.Equal(t, "Closed", Translate(Indonesian, "chat.closed"))
	// unknown locale falls back to en
	assert.Equal(t, "Dashboard", Translate("ja", "nav.dashboard"))
	// unknown key falls back to the key
	assert.Equal(t, "nav.unknown", Translate(Indonesian, "nav.unknown"))
}

func TestTable_FillsFallbacks(t *testing.T) {
	id := Table(Indonesian)
	assert.Equal(t, len(table[English]), len(id))
	assert.Equal(t, "Closed", id["chat.closed"])
	assert.Equal(t, "Dasbor", id["nav.dashboard"])
}

func TestLocales(t *testing.T) {
	assert.Equal(t, []string{"en", "id"}, Locales())
	assert.True(t, Supported("id"))
	assert.False(t, Supported("fr"))
}
