package core

import "net/http"

// rootResponse is the JSON body for the liveness descriptor at GET /.
type rootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// healthResponse is the JSON body for the health check endpoint.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HandleRoot serves the service liveness descriptor at GET /.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, rootResponse{
		Message: s.Config.Title,
		Status:  "running",
	})
}

// HandleHealth serves GET /health. The service has no critical downstream
// dependencies in its active path (the pricing engine is pure computation and
// the remote predictor is optional), so a reachable process is a healthy one.
// This endpoint is public and independent of any request body.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: s.Config.Service,
	})
}
