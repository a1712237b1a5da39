// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
)

// I18nMiddleware picks the first supported language from Accept-Language,
// e.g. "ta-IN,ta;q=0.9,en;q=0.8" resolves to "ta".
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := i18n.DefaultLanguage()

		for _, part := range strings.Split(c.GetHeader("Accept-Language"), ",") {
			tag := strings.TrimSpace(strings.Split(part, ";")[0])
			if tag == "" {
				continue
			}
			base := strings.ToLower(strings.FieldsFunc(tag, func(r rune) bool { return r == '-' || r == '_' })[0])
			if i18n.Supported(base) {
				lang = base
				break
			}
		}

		c.Set("lang", lang)
		c.Next()
	}
}
