// Command flakytarget runs a local HTTP server for exercising littlebot by
// hand: failure injection, fixed latency, and a warm-up window during which
// every response is 503 (useful for trying the pre-flight probe prompts).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	failRate := flag.Float64("fail-rate", 0, "Fraction of requests answered with 500 (0.0-1.0)")
	latency := flag.Duration("latency", 0, "Fixed delay before each response")
	warmup := flag.Duration("warmup", 0, "Answer 503 for this long after startup")
	flag.Parse()

	if *failRate < 0 || *failRate > 1 {
		log.Fatalf("fail-rate must be between 0.0 and 1.0")
	}

	started := time.Now()
	var hits atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if *latency > 0 {
			time.Sleep(*latency)
		}

		switch {
		case time.Since(started) < *warmup:
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "warming up"})
		case *failRate > 0 && rand.Float64() < *failRate:
			respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "injected failure"})
		default:
			respondJSON(w, http.StatusOK, map[string]any{"ok": true, "hits": n})
		}
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("flaky target listening on %s (fail-rate=%.2f latency=%s warmup=%s)",
		addr, *failRate, *latency, *warmup)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
