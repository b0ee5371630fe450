package main

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize         = 256
	maxEventsLimit = 200
)

func newUpgrader(strictOrigin bool) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if !strictOrigin {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // Non-browser clients don't send Origin
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return u.Host == r.Host
		},
	}
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// StatsResponse is served by /api/stats
type StatsResponse struct {
	Players     int               `json:"players"`
	Cells       int               `json:"cells"`
	Blobs       int               `json:"blobs"`
	Clients     int               `json:"clients"`
	Events      map[string]int    `json:"events,omitempty"`
	Eliminators []EliminatorCount `json:"eliminators,omitempty"`
}

// SetupRoutes configures HTTP routes
func SetupRoutes(cfg Config, game *Game, hub *Hub, analytics *Analytics, db *DB) *http.ServeMux {
	mux := http.NewServeMux()
	upgrader := newUpgrader(cfg.StrictOrigin)

	if cfg.ClientDir != "" {
		// Serve static files with no-cache so browsers always revalidate
		fs := http.FileServer(http.Dir(cfg.ClientDir))
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			fs.ServeHTTP(w, r)
		}))
	}

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Warn("upgrade error")
			return
		}
		hub.TrackConnect(ip)

		binary := r.URL.Query().Get("format") == "msgpack"
		session := NewSession(game, analytics, ip)
		client := NewClient(hub, conn, session, ip, binary, cfg.MaxMessagesPerSec)

		welcome, err := session.Open()
		if err == nil {
			err = client.SendWelcome(welcome)
		}
		if err != nil {
			log.WithError(err).Warn("session open failed")
			session.Close()
			hub.TrackDisconnect(ip)
			conn.Close()
			return
		}
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		resp := StatsResponse{
			Players: game.PlayerCount(),
			Cells:   game.CellCount(),
			Blobs:   game.BlobCount(),
			Clients: hub.ClientCount(),
		}
		if events, err := analytics.EventCounts(1); err != nil {
			log.WithError(err).Warn("stats: event counts")
		} else {
			resp.Events = events
		}
		if top, err := analytics.TopEliminators(10); err != nil {
			log.WithError(err).Warn("stats: eliminators")
		} else {
			resp.Eliminators = top
		}
		writeJSON(w, resp)
	})

	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			http.Error(w, "event log disabled", http.StatusNotFound)
			return
		}
		playerID := r.URL.Query().Get("player")
		if playerID == "" {
			http.Error(w, "missing player", http.StatusBadRequest)
			return
		}
		limit := 50
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxEventsLimit)
		}
		events, err := db.PlayerEvents(playerID, limit)
		if err != nil {
			log.WithError(err).Warn("events query")
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, events)
	})

	// Join code for phones on the same network
	mux.HandleFunc("GET /qr", func(w http.ResponseWriter, r *http.Request) {
		target := cfg.PublicURL
		if target == "" {
			target = "http://" + r.Host + "/"
		}
		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			log.WithError(err).Warn("qr encode")
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(png)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Debug("write json")
	}
}
