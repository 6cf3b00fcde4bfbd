package handler

import (
	"fmt"
	"html"
	"net/http"

	"github.com/testersen/jmsn.link/internal/service/session"
)

// HandlePortal serves the gated landing page. The session middleware has
// already run, so a session is always present here.
func HandlePortal(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r)
	if sess == nil {
		renderJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	name := sess.Name
	if name == "" {
		name = sess.Email
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>jmsn.link</title></head>
<body>
<h1>jmsn.link</h1>
<p>Signed in as %s.</p>
</body>
</html>
`, html.EscapeString(name))
}
