package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

var matcher = language.NewMatcher(Supported)

// Middleware injects a localizer into every request context. The request's
// Accept-Language wins when it names a supported language; otherwise lang is used.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLocalizer(r.Context(), NewLocalizer(Negotiate(r.Header.Get("Accept-Language"), lang)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Negotiate picks the supported language best matching an Accept-Language
// header, or def when nothing matches.
func Negotiate(acceptLanguage, def string) string {
	if acceptLanguage == "" {
		return def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return def
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return def
	}
	base, _ := Supported[idx].Base()
	return base.String()
}
