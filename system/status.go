package system

import (
	"encoding/json"
	"math"
	"net/http"
	"time"
)

type statusReport struct {
	Version  string  `json:"version"`
	Hits     uint64  `json:"hits"`
	Average  float64 `json:"hits-per-second,omitempty"`
	Uptime   float64 `json:"uptime,omitempty"`
	Delivery string  `json:"delivery"` // "sendgrid" or "log"
}

func (s *System) StatusHandler(w http.ResponseWriter, r *http.Request) {
	stats := statusReport{
		Version:  s.config.Meta.Version,
		Hits:     s.Stats.hits.Load(),
		Delivery: "log",
	}
	if s.contact.Configured() {
		stats.Delivery = "sendgrid"
	}
	if !s.Stats.t1.IsZero() {
		stats.Uptime = time.Since(s.Stats.t1).Truncate(time.Second).Seconds()
		if stats.Uptime > 0 {
			stats.Average = math.Round(float64(stats.Hits)/stats.Uptime*100) / 100
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(stats)
}
