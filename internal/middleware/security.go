package middleware

import (
	"github.com/labstack/echo/v4"
)

// securityHeaders is set on every response. The API only serves JSON, so the
// content policy forbids loading anything, and spending data must never be
// stored by a shared cache.
var securityHeaders = [][2]string{
	{echo.HeaderXContentTypeOptions, "nosniff"},
	{echo.HeaderXFrameOptions, "DENY"},
	{echo.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains"},
	{echo.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'"},
	{echo.HeaderReferrerPolicy, "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
	{echo.HeaderCacheControl, "no-store, no-cache, must-revalidate, private"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
}

func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range securityHeaders {
				h.Set(kv[0], kv[1])
			}
			return next(c)
		}
	}
}
