package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RouteClass determines whether a route requires a verified session token.
type RouteClass int

const (
	// RoutePublic routes never require a token.
	RoutePublic RouteClass = iota
	// RouteAuthenticated routes require a valid token cookie.
	RouteAuthenticated
	// RouteBypassed routes skip the token check even though they mutate
	// state. The delete endpoints are classified this way to preserve the
	// long-standing unauthenticated-delete behavior; see DESIGN.md.
	RouteBypassed
)

type routeRule struct {
	prefix string
	class  RouteClass
}

// routeTable classifies every registered path prefix. checkRouteCoverage
// verifies at startup that no registered route falls outside this table, so
// a new endpoint cannot ship unclassified.
var routeTable = []routeRule{
	{"/api/login", RoutePublic},
	{"/api/logout", RoutePublic},
	{"/api/sign-up", RoutePublic},
	{"/api/forgot-password", RoutePublic},
	{"/api/change-password", RoutePublic},
	{"/api/fetch-code", RoutePublic},
	{"/api/search", RoutePublic},
	{"/api/download-zip", RoutePublic},
	{"/api/health", RoutePublic},
	{"/api/delete/", RouteBypassed},
	{"/api/all-codes", RouteAuthenticated},
	{"/api/save-new-code", RouteAuthenticated},
	{"/api/save", RouteAuthenticated},
	{"/api/export-zip", RouteAuthenticated},
	{"/api/exports", RouteAuthenticated},
}

// classifyRoute resolves a request path against the table by longest
// matching prefix. The second result reports whether any rule matched.
func classifyRoute(path string) (RouteClass, bool) {
	bestLen := -1
	var best RouteClass
	for _, rule := range routeTable {
		if strings.HasPrefix(path, rule.prefix) && len(rule.prefix) > bestLen {
			bestLen = len(rule.prefix)
			best = rule.class
		}
	}
	if bestLen < 0 {
		return RouteAuthenticated, false
	}
	return best, true
}

// checkRouteCoverage fails startup if a registered route has no entry in the
// classification table.
func checkRouteCoverage(router *gin.Engine) error {
	for _, route := range router.Routes() {
		if !strings.HasPrefix(route.Path, "/api") {
			continue
		}
		if _, ok := classifyRoute(route.Path); !ok {
			return fmt.Errorf("route %s %s is not classified in the route table", route.Method, route.Path)
		}
	}
	return nil
}

// contextUserKey is the gin context key under which the gate stores the
// authenticated username.
const contextUserKey = "auth_username"

// authGate is the per-request authorization decision. Public and bypassed
// routes pass through untouched; everything else needs a verifiable token
// cookie. A missing cookie and a failed verification are distinct outcomes
// (401 vs 403). Token identity is trusted without a store lookup.
func (h *Handler) authGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		class, _ := classifyRoute(c.Request.URL.Path)
		if class != RouteAuthenticated {
			c.Next()
			return
		}

		token, err := c.Cookie(tokenCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Access denied",
			})
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		c.Set(contextUserKey, claims.Username)
		c.Next()
	}
}

// currentUsername returns the identity the gate attached to the request.
func currentUsername(c *gin.Context) (string, bool) {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok && username != ""
}
