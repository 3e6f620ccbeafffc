package stream

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hawkbook/simulator"
)

// Server exposes a running Simulator's observation feed over
// WebSocket and Prometheus, generalized from the teacher's
// server/server.go (handleTradeStream/handleBookStream over a hub,
// the same withCORS/withAuth middleware chain) from trades/book-views
// to simulator.ObservationRecord.
type Server struct {
	hub        *Hub[simulator.ObservationRecord]
	upgrader   websocket.Upgrader
	authToken  string
	corsOrigin string
	logger     *zap.Logger
	metrics    *metrics
}

type metrics struct {
	eventsTotal *prometheus.CounterVec
	dropped     prometheus.Counter
	midPrice    prometheus.Gauge
	spread      prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hawkbook_events_total",
			Help: "Number of simulated order book events published, by type and side, including events the book dropped.",
		}, []string{"type", "side"}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "hawkbook_events_dropped_total",
			Help: "Number of simulated events dropped by the order book precondition check.",
		}),
		midPrice: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hawkbook_mid_price",
			Help: "Most recent mid price, if both sides of the book are non-empty.",
		}),
		spread: factory.NewGauge(prometheus.GaugeOpts{
			Name: "hawkbook_spread",
			Help: "Most recent bid-ask spread, if both sides of the book are non-empty.",
		}),
	}
}

// NewServer builds a stream server. Passing a nil registry registers
// metrics against prometheus.DefaultRegisterer.
func NewServer(authToken, corsOrigin string, reg prometheus.Registerer, logger *zap.Logger) *Server {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub:        NewHub[simulator.ObservationRecord](),
		upgrader:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		authToken:  authToken,
		corsOrigin: corsOrigin,
		logger:     logger.With(zap.String("component", "stream")),
		metrics:    newMetrics(reg),
	}
}

// Publish records an observation's metrics and broadcasts it to every
// subscribed WebSocket client. The simulator loop (typically driven
// from cmd/simulate) calls this once per step; Publish never blocks on
// a slow subscriber.
func (s *Server) Publish(rec simulator.ObservationRecord) {
	s.metrics.eventsTotal.WithLabelValues(rec.EventType.String(), rec.Side.String()).Inc()
	if !rec.Applied {
		s.metrics.dropped.Inc()
	}
	if rec.Mid != nil {
		s.metrics.midPrice.Set(*rec.Mid)
	}
	if rec.Spread != nil {
		s.metrics.spread.Set(*rec.Spread)
	}
	s.hub.Broadcast(rec)
}

// Routes returns the HTTP handler serving /ws/observations and
// /metrics.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws/observations", s.withCORS(s.withAuth(http.HandlerFunc(s.handleObservationStream))))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != s.authToken {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("missing or invalid token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleObservationStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(32)
	defer s.hub.Unsubscribe(sub)

	for rec := range sub.ch {
		if err := conn.WriteJSON(publicObservation(rec)); err != nil {
			return
		}
	}
}

type publicObservationT struct {
	T          float64  `json:"t"`
	EventType  string   `json:"eventType"`
	Side       string   `json:"side"`
	Quantity   float64  `json:"quantity"`
	Price      float64  `json:"price"`
	Applied    bool     `json:"applied"`
	BestBid    *float64 `json:"bestBid,omitempty"`
	BestBidQty *float64 `json:"bestBidQty,omitempty"`
	BestAsk    *float64 `json:"bestAsk,omitempty"`
	BestAskQty *float64 `json:"bestAskQty,omitempty"`
	Mid        *float64 `json:"mid,omitempty"`
	Spread     *float64 `json:"spread,omitempty"`
	Imbalance  *float64 `json:"imbalance,omitempty"`
}

func publicObservation(rec simulator.ObservationRecord) publicObservationT {
	return publicObservationT{
		T:          rec.T,
		EventType:  rec.EventType.String(),
		Side:       rec.Side.String(),
		Quantity:   rec.Quantity,
		Price:      rec.Price,
		Applied:    rec.Applied,
		BestBid:    rec.BestBidPrice,
		BestBidQty: rec.BestBidQty,
		BestAsk:    rec.BestAskPrice,
		BestAskQty: rec.BestAskQty,
		Mid:        rec.Mid,
		Spread:     rec.Spread,
		Imbalance:  rec.Imbalance,
	}
}
