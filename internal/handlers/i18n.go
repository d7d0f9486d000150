package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/i18n"
)

// GetLocales lists the supported locales
func GetLocales(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"locales": i18n.Locales()})
}

// GetTranslations returns the table of a locale with missing keys filled from English.
// ?key=... returns a single translation.
func GetTranslations(c *gin.Context) {
	locale := c.Param("locale")
	if !i18n.Supported(locale) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported locale " + locale})
		return
	}
	if key := c.Query("key"); key != "" {
		c.JSON(http.StatusOK, gin.H{"locale": locale, "key": key, "text": i18n.Translate(locale, key)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locale": locale, "messages": i18n.Table(locale)})
}
