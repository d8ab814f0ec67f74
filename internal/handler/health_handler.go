package handler

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
}

// Health はプロセスの生存確認に使う。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
