package main

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/elsid/CodeBall-sub000/internal/config"
	"github.com/elsid/CodeBall-sub000/internal/render"
	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
	"github.com/elsid/CodeBall-sub000/internal/shared/types"
	"github.com/elsid/CodeBall-sub000/internal/simulation"
	"github.com/elsid/CodeBall-sub000/internal/stats"
	"github.com/elsid/CodeBall-sub000/internal/strategy"
	"github.com/elsid/CodeBall-sub000/internal/transport"
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

type server struct {
	log      *logger.Logger
	match    *simulation.Match
	hub      *render.Hub
	upgrader websocket.Upgrader
	sides    [2]*side

	mu        sync.RWMutex
	clients   map[string]*client
	overrides map[int]types.Action
}

func main() {
	log := logger.New("gameserver")
	addr := getEnv("GAME_ADDR", ":9003")
	botAddr := getEnv("BOT_ADDR", "")
	matchID := getEnv("MATCH_ID", uuid.NewString())

	rules := types.DefaultRules()
	rules.TeamSize = getEnvInt("TEAM_SIZE", rules.TeamSize)
	rules.Seed = int64(getEnvInt("MATCH_SEED", int(time.Now().UTC().Unix())))
	rules.MaxTickCount = getEnvInt("MAX_TICK_COUNT", rules.MaxTickCount)

	cfg, err := config.Load(getEnv("CODEBALL_CONFIG", ""), rules.TeamSize)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	var sink stats.Sink = stats.Discard{}
	if url := getEnv("TELEMETRY_URL", ""); url != "" {
		sink = stats.NewHTTPSink(url)
	}

	hub := render.NewHub(log)
	s := &server{
		log:   log,
		match: simulation.NewMatch(matchID, rules),
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:   make(map[string]*client),
		overrides: make(map[int]types.Action),
	}
	runID := stats.NewRunID()
	s.sides[0] = newSide(1, false, strategy.Options{Config: &cfg, Log: log, Sink: sink, Recorder: hub, RunID: runID})
	s.sides[1] = newSide(2, true, strategy.Options{Config: &cfg, Log: log, Sink: sink, RunID: runID})

	if botAddr != "" {
		go s.acceptBot(botAddr)
	}
	go s.runSimulationLoop()
	go s.runReplicationLoop()

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	router.Handle("/render", hub).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("match host listening on %s (match=%s seed=%d team_size=%d)", addr, matchID, rules.Seed, rules.TeamSize)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"match":  s.match.ID(),
		"tick":   s.match.CurrentTick(),
	})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, 64)}
	s.register(c)

	s.log.Printf("viewer connected id=%s remote=%s", c.id, r.RemoteAddr)
	game := s.match.Snapshot()
	welcome := types.ServerEnvelope{
		Type:     "welcome",
		MatchID:  s.match.ID(),
		Game:     &game,
		ServerMS: time.Now().UTC().UnixMilli(),
		Message:  "connected",
	}
	if payload, err := json.Marshal(welcome); err == nil {
		select {
		case c.send <- payload:
		default:
		}
	}

	go s.writePump(c)
	s.readPump(c)
}

func (s *server) readPump(c *client) {
	defer func() {
		s.unregister(c.id)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Printf("viewer disconnected id=%s", c.id)
				return
			}
			s.log.Printf("read error id=%s err=%v", c.id, err)
			return
		}

		var in types.ClientEnvelope
		if err := json.Unmarshal(msg, &in); err != nil {
			s.sendError(c, "bad_payload")
			continue
		}

		switch in.Type {
		case "action":
			if in.Action == nil || in.RobotID == 0 {
				s.sendError(c, "missing_action")
				continue
			}
			s.mu.Lock()
			s.overrides[in.RobotID] = *in.Action
			s.mu.Unlock()
		case "ping":
			pong := types.ServerEnvelope{Type: "pong", ServerMS: time.Now().UTC().UnixMilli()}
			if payload, err := json.Marshal(pong); err == nil {
				select {
				case c.send <- payload:
				default:
				}
			}
		default:
			s.sendError(c, "unsupported_message_type")
		}
	}
}

func (s *server) writePump(c *client) {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

func (s *server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

func (s *server) unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		close(c.send)
		delete(s.clients, id)
	}
}

func (s *server) sendError(c *client, message string) {
	errPayload, _ := json.Marshal(types.ServerEnvelope{
		Type:    "error",
		Message: message,
	})
	select {
	case c.send <- errPayload:
	default:
	}
}

// acceptBot lets one external bot play for the first player over the host
// protocol. Until it connects the local strategy plays.
func (s *server) acceptBot(addr string) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.log.Printf("bot listener on %s failed: %v", addr, err)
		return
	}
	defer listener.Close()
	s.log.Printf("waiting for a bot on %s", addr)
	for {
		raw, err := listener.Accept()
		if err != nil {
			s.log.Printf("accept bot: %v", err)
			return
		}
		host := transport.NewHost(raw)
		token, err := host.ReadToken()
		if err != nil {
			s.log.Printf("bot handshake from %s: %v", raw.RemoteAddr(), err)
			_ = host.Close()
			continue
		}
		if err := host.WriteRules(s.match.Rules()); err != nil {
			s.log.Printf("send rules to bot: %v", err)
			_ = host.Close()
			continue
		}
		s.log.Printf("bot connected token=%s remote=%s", token, raw.RemoteAddr())
		s.sides[0].attach(host)
	}
}

func (s *server) runSimulationLoop() {
	rules := s.match.Rules()
	ticker := time.NewTicker(time.Second / time.Duration(rules.TicksPerSecond))
	defer ticker.Stop()

	for range ticker.C {
		if s.match.IsFinished() {
			game := s.match.Snapshot()
			s.log.Printf("match finished tick=%d score=%d:%d", game.CurrentTick, game.Players[0].Score, game.Players[1].Score)
			for _, side := range s.sides {
				side.close(s.log)
			}
			return
		}
		game := s.match.Snapshot()
		for _, side := range s.sides {
			for robotID, action := range side.act(rules, game, s.log) {
				s.match.ApplyAction(robotID, action)
			}
		}
		s.mu.Lock()
		for robotID, action := range s.overrides {
			s.match.ApplyAction(robotID, action)
		}
		clear(s.overrides)
		s.mu.Unlock()
		s.match.Tick()
	}
}

func (s *server) runReplicationLoop() {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for range ticker.C {
		game := s.match.Snapshot()
		env := types.ServerEnvelope{
			Type:     "state",
			Tick:     game.CurrentTick,
			MatchID:  s.match.ID(),
			Game:     &game,
			ServerMS: time.Now().UTC().UnixMilli(),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			s.log.Printf("marshal state failed: %v", err)
			continue
		}

		s.mu.RLock()
		for _, c := range s.clients {
			select {
			case c.send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
