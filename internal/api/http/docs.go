package http

import (
	_ "embed"
	"net/http"
)

//go:embed docs/swagger.yml
var swaggerSpec []byte

func handleSwaggerSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(swaggerSpec)
}
