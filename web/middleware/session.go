package middleware

import (
	"net/http"

	"docs-agent/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookieName = "docs_agent_session"
const CookieMaxAge = 30 * 24 * 60 * 60 // 30 days

func SessionMiddleware(store *database.PostgresStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		var sessionID uuid.UUID

		if err == http.ErrNoCookie {
			sessionID, err = store.CreateSession(c.Request.Context())
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
				return
			}
			c.SetCookie(SessionCookieName, sessionID.String(), CookieMaxAge, "/", "", false, true)
		} else if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse session cookie"})
			return
		} else {
			sessionID, err = uuid.Parse(cookie)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
				return
			}
			// A cookie can outlive its session row (retention cleanup);
			// reissue instead of failing the request.
			sess, err := store.GetSession(c.Request.Context(), sessionID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up session"})
				return
			}
			if sess == nil {
				sessionID, err = store.CreateSession(c.Request.Context())
				if err != nil {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
					return
				}
				c.SetCookie(SessionCookieName, sessionID.String(), CookieMaxAge, "/", "", false, true)
			}
		}

		c.Set("sessionID", sessionID)
		c.Next()
	}
}
