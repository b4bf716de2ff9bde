// Package metrics exposes Prometheus counters and gauges for the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry            *prometheus.Registry
	pairingIssuedTotal  prometheus.Counter
	pairingRedeemsTotal *prometheus.CounterVec
	playlistCommits     prometheus.Counter
	connectedDisplays   prometheus.Gauge
	uploadsTotal        prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	pairingIssuedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signage_pairing_codes_issued_total",
		Help: "Total number of pairing codes issued",
	})
	pairingRedeemsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signage_pairing_redeems_total",
		Help: "Pairing redemption attempts by outcome",
	}, []string{"outcome"})
	playlistCommits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signage_playlist_commits_total",
		Help: "Total number of whole-playlist commits",
	})
	connectedDisplays := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signage_connected_displays",
		Help: "Displays currently holding an event subscription",
	})
	uploadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signage_media_uploads_total",
		Help: "Total number of media uploads",
	})

	registry.MustRegister(
		pairingIssuedTotal,
		pairingRedeemsTotal,
		playlistCommits,
		connectedDisplays,
		uploadsTotal,
	)

	return &Metrics{
		registry:            registry,
		pairingIssuedTotal:  pairingIssuedTotal,
		pairingRedeemsTotal: pairingRedeemsTotal,
		playlistCommits:     playlistCommits,
		connectedDisplays:   connectedDisplays,
		uploadsTotal:        uploadsTotal,
	}
}

func (m *Metrics) IncPairingIssued() { m.pairingIssuedTotal.Inc() }

func (m *Metrics) IncPairingRedeem(outcome string) {
	m.pairingRedeemsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncPlaylistCommits() { m.playlistCommits.Inc() }

func (m *Metrics) IncUploads() { m.uploadsTotal.Inc() }

func (m *Metrics) SetConnectedDisplays(n int) { m.connectedDisplays.Set(float64(n)) }

// Handler serves the scrape endpoint. updateGauges runs before each scrape
// to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
