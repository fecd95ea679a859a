package middleware

import (
	"net/http"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Redirect sends the browser to target: HX-Redirect for htmx requests,
// 303 See Other otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// PushURL asks htmx to record target in the browser history.
func PushURL(w http.ResponseWriter, target string) {
	w.Header().Set("HX-Push-Url", target)
}
