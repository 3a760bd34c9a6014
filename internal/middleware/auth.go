package middleware

import (
	"net/http"
	"strings"
)

const authCookie = "authenticated"

// publicPaths are reachable without logging in.
var publicPaths = []string{"/login", "/auth/login"}

// publicPrefixes cover static assets and the camera/tracker ingest endpoints.
var publicPrefixes = []string{"/static/", "/css/", "/js/", "/camera/", "/api/detections"}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AuthMiddleware checks that the user is logged in (cookie 'authenticated=true').
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(authCookie)
		if err != nil || cookie.Value != "true" {
			// API and AJAX clients get 401, browsers go to the login page
			if strings.HasPrefix(r.URL.Path, "/api/") ||
				r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
				r.Header.Get("Content-Type") == "application/json" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
