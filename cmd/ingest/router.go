package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"token-ingest/internal/observability"
)

func newRouter(g prometheus.Gatherer, mode string) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", observability.Handler(g)).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok", "mode": mode})
	}).Methods(http.MethodGet)
	return r
}
