package mw

import (
	"encoding/json"
	"net/http"
	"time"
)

// reject writes the same error body as the handlers package. mw cannot import
// handlers without a cycle.
func reject(w http.ResponseWriter, status int, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		OK        bool   `json:"ok"`
		Details   string `json:"details"`
		Timestamp int64  `json:"timestamp"`
	}{OK: false, Details: details, Timestamp: time.Now().Unix()})
}
