package httpapi

import (
	"net/http"

	"github.com/go-chi/render"
)

func writeError(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	body := map[string]any{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	render.Status(req, status)
	render.JSON(w, req, body)
}
