// Package relay hosts the WebSocket surface of the proxy engine. Peers join
// a scope room and send raw message text; the server resolves each message
// through the segmentation and token pipeline and fans the attributed runs
// out to every peer in the room.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/websocket"

	"github.com/vioshim/proxyengine/internal/gamedata"
	gamedatasqlite "github.com/vioshim/proxyengine/internal/gamedata/sqlite"
	"github.com/vioshim/proxyengine/internal/id"
	"github.com/vioshim/proxyengine/internal/macro"
	"github.com/vioshim/proxyengine/internal/persona"
	"github.com/vioshim/proxyengine/internal/pipeline"
	"github.com/vioshim/proxyengine/internal/platform/timeouts"
	"github.com/vioshim/proxyengine/internal/storage"
	storagebbolt "github.com/vioshim/proxyengine/internal/storage/bbolt"
)

const (
	maxFramePayloadBytes   = 16 * 1024
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3

	maxMessageBodyRunes     = 2000
	maxClientMessageIDRunes = 128
)

// Config defines the inputs for the relay transport boundary.
type Config struct {
	HTTPAddr          string
	StorePath         string
	GameDataPath      string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Engine bundles the resolution pipeline with its stores. A nil persona or
// preference store degrades to unattributed resolution in UTC.
type Engine struct {
	Resolver    *pipeline.Resolver
	Personas    storage.PersonaStore
	Preferences storage.PreferenceStore
}

func (e *Engine) resolveBatch(ctx context.Context, userID, scopeID int64, body string) ([]relayMessage, error) {
	var candidates []*persona.Persona
	if e.Personas != nil {
		var err error
		candidates, err = e.Personas.List(ctx, userID, scopeID)
		if err != nil {
			return nil, fmt.Errorf("list personas: %w", err)
		}
	}

	resolver := e.Resolver
	if resolver == nil {
		resolver = &pipeline.Resolver{}
	}

	runs := resolver.ResolveMessage(ctx, pipeline.Message{
		UserID:     userID,
		Candidates: candidates,
		Text:       body,
	})

	batch := make([]relayMessage, 0, len(runs))
	claimed := make(map[string]persona.Speaker)
	for _, run := range runs {
		msg := relayMessage{
			MessageID: newMessageID(),
			Body:      run.Text,
			Block:     blockPayloadFrom(run.Block),
		}
		if run.Speaker != nil {
			name := persona.SafeName(run.Speaker.SpeakerName())
			if prior, ok := claimed[name]; ok && prior != run.Speaker {
				// Two speakers sharing a display name within one batch
				// would be indistinguishable to clients.
				name = persona.AlternateName(run.Speaker.SpeakerName())
			} else {
				claimed[name] = run.Speaker
			}
			msg.Speaker = &relaySpeaker{
				Name:  name,
				Image: run.Speaker.SpeakerImage(),
			}
		}
		batch = append(batch, msg)
	}
	return batch, nil
}

func newMessageID() string {
	generated, err := id.NewID()
	if err != nil {
		return fmt.Sprintf("msg_%d", time.Now().UnixNano())
	}
	return "msg_" + generated
}

type wsFrame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

type wsErrorEnvelope struct {
	Error wsError `json:"error"`
}

type wsError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type joinPayload struct {
	ScopeID int64 `json:"scope_id"`
}

type joinedPayload struct {
	ScopeID          int64  `json:"scope_id"`
	LatestSequenceID int64  `json:"latest_sequence_id"`
	ServerTime       string `json:"server_time"`
}

type sendPayload struct {
	ClientMessageID string `json:"client_message_id"`
	Body            string `json:"body"`
}

type historyBeforePayload struct {
	BeforeSequenceID int64 `json:"before_sequence_id"`
	Limit            int   `json:"limit"`
}

type timezonePayload struct {
	Zone string `json:"zone"`
}

type personaCreatePayload struct {
	DisplayName  string           `json:"display_name"`
	DefaultImage string           `json:"default_image,omitempty"`
	Pairs        []pairPayload    `json:"pairs,omitempty"`
	Variants     []variantPayload `json:"variants,omitempty"`
}

type pairPayload struct {
	Prefix string `json:"prefix"`
	Suffix string `json:"suffix"`
}

type variantPayload struct {
	Name  string        `json:"name"`
	Image string        `json:"image,omitempty"`
	Pairs []pairPayload `json:"pairs,omitempty"`
}

type personaEnvelope struct {
	Persona personaPayload `json:"persona"`
}

type personaListEnvelope struct {
	Personas []personaPayload `json:"personas"`
}

type personaPayload struct {
	ID           int64            `json:"id"`
	DisplayName  string           `json:"display_name"`
	DefaultImage string           `json:"default_image,omitempty"`
	Pairs        []pairPayload    `json:"pairs,omitempty"`
	Variants     []variantPayload `json:"variants,omitempty"`
}

type messageEnvelope struct {
	Message relayMessage `json:"message"`
}

type relayMessage struct {
	MessageID       string        `json:"message_id"`
	ScopeID         int64         `json:"scope_id"`
	SequenceID      int64         `json:"sequence_id"`
	SentAt          string        `json:"sent_at"`
	Speaker         *relaySpeaker `json:"speaker,omitempty"`
	Body            string        `json:"body"`
	Block           *blockPayload `json:"block,omitempty"`
	ClientMessageID string        `json:"client_message_id,omitempty"`
}

type relaySpeaker struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type blockPayload struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Thumbnail   string              `json:"thumbnail,omitempty"`
	Footer      string              `json:"footer,omitempty"`
	Fields      []blockFieldPayload `json:"fields,omitempty"`
}

type blockFieldPayload struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

func blockPayloadFrom(block *macro.Block) *blockPayload {
	if block == nil {
		return nil
	}
	payload := &blockPayload{
		Title:       block.Title,
		Description: block.Description,
		Color:       block.Color,
		Thumbnail:   block.Thumbnail,
		Footer:      block.Footer,
	}
	for _, field := range block.Fields {
		payload.Fields = append(payload.Fields, blockFieldPayload{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	return payload
}

type ackEnvelope struct {
	Result ackResult `json:"result"`
}

type ackResult struct {
	Status     string `json:"status"`
	MessageID  string `json:"message_id,omitempty"`
	SequenceID int64  `json:"sequence_id,omitempty"`
	Count      int    `json:"count,omitempty"`
}

// NewHandler creates relay routes over the given engine.
func NewHandler(engine *Engine) http.Handler {
	if engine == nil {
		engine = &Engine{}
	}

	hub := newRoomHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub, engine)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	return mux
}

func userIDFromRequest(r *http.Request) int64 {
	if r == nil {
		return 0
	}
	raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if raw == "" {
		return 0
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return userID
}

func handleWSConn(conn *websocket.Conn, hub *roomHub, engine *Engine) {
	defer func() {
		_ = conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	peer := newWSPeer(json.NewEncoder(conn))
	var userID int64
	if request := conn.Request(); request != nil {
		userID = userIDFromRequest(request)
	}
	session := newWSSession(userID, peer)
	defer func() {
		if room := session.currentRoom(); room != nil {
			room.leave(session.peer)
		}
	}()

	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var frame wsFrame
		if err := decoder.Decode(&frame); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeWSError(session.peer, "", "INVALID_ARGUMENT", "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		if len(frame.Payload) > maxFramePayloadBytes {
			_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "payload too large")
			continue
		}

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			_ = writeWSError(session.peer, frame.RequestID, "RESOURCE_EXHAUSTED", "rate limit exceeded")
			return
		}

		ctx := context.Background()
		if request := conn.Request(); request != nil {
			ctx = request.Context()
		}

		switch frame.Type {
		case "relay.join":
			handleJoinFrame(session, hub, frame)
		case "relay.send":
			handleSendFrame(ctx, session, engine, frame)
		case "relay.history.before":
			handleHistoryBeforeFrame(session, frame)
		case "relay.timezone":
			handleTimezoneFrame(ctx, session, engine, frame)
		case "relay.persona.create":
			handlePersonaCreateFrame(ctx, session, engine, frame)
		case "relay.persona.list":
			handlePersonaListFrame(ctx, session, engine, frame)
		default:
			_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func handleJoinFrame(session *wsSession, hub *roomHub, frame wsFrame) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid join payload")
		return
	}
	if payload.ScopeID <= 0 {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "scope_id is required")
		return
	}

	room := hub.room(payload.ScopeID)
	previous := session.setRoom(room)
	if previous != nil && previous != room {
		previous.leave(session.peer)
	}
	latest := room.join(session.peer)

	_ = session.peer.writeFrame(wsFrame{
		Type:      "relay.joined",
		RequestID: frame.RequestID,
		Payload: mustJSON(joinedPayload{
			ScopeID:          payload.ScopeID,
			LatestSequenceID: latest,
			ServerTime:       time.Now().UTC().Format(time.RFC3339),
		}),
	})
}

func handleSendFrame(ctx context.Context, session *wsSession, engine *Engine, frame wsFrame) {
	var payload sendPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid send payload")
		return
	}

	clientMessageID := strings.TrimSpace(payload.ClientMessageID)
	if clientMessageID == "" {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "client_message_id is required")
		return
	}
	if utf8.RuneCountInString(clientMessageID) > maxClientMessageIDRunes {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "client_message_id must be at most 128 characters")
		return
	}

	body := strings.TrimSpace(payload.Body)
	if body == "" {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "body is required")
		return
	}
	if utf8.RuneCountInString(body) > maxMessageBodyRunes {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "body must be at most 2000 characters")
		return
	}

	room := session.currentRoom()
	if room == nil {
		_ = writeWSError(session.peer, frame.RequestID, "FORBIDDEN", "must join a scope before sending")
		return
	}

	batch, err := engine.resolveBatch(ctx, session.userID, room.scopeID, body)
	if err != nil {
		log.Printf("relay: resolve message user=%d scope=%d: %v", session.userID, room.scopeID, err)
		_ = writeWSError(session.peer, frame.RequestID, "UNAVAILABLE", "message resolution unavailable")
		return
	}
	if len(batch) == 0 {
		_ = session.peer.writeFrame(wsFrame{
			Type:      "relay.ack",
			RequestID: frame.RequestID,
			Payload:   mustJSON(ackEnvelope{Result: ackResult{Status: "ok"}}),
		})
		return
	}

	batch, duplicate, subscribers := room.appendBatch(clientMessageID, batch)

	_ = session.peer.writeFrame(wsFrame{
		Type:      "relay.ack",
		RequestID: frame.RequestID,
		Payload: mustJSON(ackEnvelope{
			Result: ackResult{
				Status:     "ok",
				MessageID:  batch[0].MessageID,
				SequenceID: batch[len(batch)-1].SequenceID,
				Count:      len(batch),
			},
		}),
	})

	if duplicate {
		return
	}

	for _, msg := range batch {
		messageFrame := wsFrame{
			Type:    "relay.message",
			Payload: mustJSON(messageEnvelope{Message: msg}),
		}
		for _, subscriber := range subscribers {
			_ = subscriber.writeFrame(messageFrame)
		}
	}
}

func handleHistoryBeforeFrame(session *wsSession, frame wsFrame) {
	var payload historyBeforePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid history payload")
		return
	}
	if payload.BeforeSequenceID < 1 {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "before_sequence_id must be >= 1")
		return
	}
	if payload.Limit <= 0 {
		payload.Limit = 50
	}
	if payload.Limit > 200 {
		payload.Limit = 200
	}

	room := session.currentRoom()
	if room == nil {
		_ = writeWSError(session.peer, frame.RequestID, "FORBIDDEN", "must join a scope before requesting history")
		return
	}

	history := room.historyBefore(payload.BeforeSequenceID, payload.Limit)
	for _, msg := range history {
		_ = session.peer.writeFrame(wsFrame{
			Type:    "relay.message",
			Payload: mustJSON(messageEnvelope{Message: msg}),
		})
	}
	_ = session.peer.writeFrame(wsFrame{
		Type:      "relay.ack",
		RequestID: frame.RequestID,
		Payload: mustJSON(ackEnvelope{
			Result: ackResult{
				Status: "ok",
				Count:  len(history),
			},
		}),
	})
}

func handleTimezoneFrame(ctx context.Context, session *wsSession, engine *Engine, frame wsFrame) {
	var payload timezonePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid timezone payload")
		return
	}
	if engine.Preferences == nil {
		_ = writeWSError(session.peer, frame.RequestID, "UNAVAILABLE", "preferences are not configured")
		return
	}
	if err := engine.Preferences.PutTimezone(ctx, session.userID, payload.Zone); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid timezone")
		return
	}
	_ = session.peer.writeFrame(wsFrame{
		Type:      "relay.ack",
		RequestID: frame.RequestID,
		Payload:   mustJSON(ackEnvelope{Result: ackResult{Status: "ok"}}),
	})
}

func handlePersonaCreateFrame(ctx context.Context, session *wsSession, engine *Engine, frame wsFrame) {
	var payload personaCreatePayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", "invalid persona payload")
		return
	}
	if engine.Personas == nil {
		_ = writeWSError(session.peer, frame.RequestID, "UNAVAILABLE", "persona storage is not configured")
		return
	}
	room := session.currentRoom()
	if room == nil {
		_ = writeWSError(session.peer, frame.RequestID, "FORBIDDEN", "must join a scope before managing personas")
		return
	}

	input := persona.CreatePersonaInput{
		OwnerID:      session.userID,
		ScopeID:      room.scopeID,
		DisplayName:  payload.DisplayName,
		DefaultImage: payload.DefaultImage,
	}
	for _, pair := range payload.Pairs {
		input.Pairs = append(input.Pairs, persona.BoundaryPair{Prefix: pair.Prefix, Suffix: pair.Suffix})
	}
	for _, variant := range payload.Variants {
		v := &persona.Variant{Name: variant.Name, Image: variant.Image}
		for _, pair := range variant.Pairs {
			v.Pairs = append(v.Pairs, persona.BoundaryPair{Prefix: pair.Prefix, Suffix: pair.Suffix})
		}
		input.Variants = append(input.Variants, v)
	}

	created, err := persona.CreatePersona(input, nil)
	if err != nil {
		_ = writeWSError(session.peer, frame.RequestID, "INVALID_ARGUMENT", err.Error())
		return
	}
	if err := engine.Personas.Put(ctx, created); err != nil {
		log.Printf("relay: put persona user=%d scope=%d: %v", session.userID, room.scopeID, err)
		_ = writeWSError(session.peer, frame.RequestID, "UNAVAILABLE", "persona storage unavailable")
		return
	}

	_ = session.peer.writeFrame(wsFrame{
		Type:      "relay.persona",
		RequestID: frame.RequestID,
		Payload:   mustJSON(personaEnvelope{Persona: personaPayloadFrom(created)}),
	})
}

func handlePersonaListFrame(ctx context.Context, session *wsSession, engine *Engine, frame wsFrame) {
	if engine.Personas == nil {
		_ = writeWSError(session.peer, frame.RequestID, "UNAVAILABLE", "persona storage is not configured")
		return
	}
	room := session.currentRoom()
	if room == nil {
		_ = writeWSError(session.peer, frame.RequestID, "FORBIDDEN", "must join a scope before managing personas")
		return
	}

	personas, err := engine.Personas.List(ctx, session.userID, room.scopeID)
	if err != nil {
		log.Printf("relay: list personas user=%d scope=%d: %v", session.userID, room.scopeID, err)
		_ = writeWSError(session.peer, frame.RequestID, "UNAVAILABLE", "persona storage unavailable")
		return
	}

	envelope := personaListEnvelope{Personas: make([]personaPayload, 0, len(personas))}
	for _, p := range personas {
		envelope.Personas = append(envelope.Personas, personaPayloadFrom(p))
	}
	_ = session.peer.writeFrame(wsFrame{
		Type:      "relay.personas",
		RequestID: frame.RequestID,
		Payload:   mustJSON(envelope),
	})
}

func personaPayloadFrom(p *persona.Persona) personaPayload {
	payload := personaPayload{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		DefaultImage: p.DefaultImage,
	}
	for _, pair := range p.Pairs {
		payload.Pairs = append(payload.Pairs, pairPayload{Prefix: pair.Prefix, Suffix: pair.Suffix})
	}
	for _, v := range p.Variants {
		variant := variantPayload{Name: v.Name, Image: v.Image}
		for _, pair := range v.Pairs {
			variant.Pairs = append(variant.Pairs, pairPayload{Prefix: pair.Prefix, Suffix: pair.Suffix})
		}
		payload.Variants = append(payload.Variants, variant)
	}
	return payload
}

func writeWSError(peer *wsPeer, requestID string, code string, message string) error {
	return peer.writeFrame(wsFrame{
		Type:      "relay.error",
		RequestID: requestID,
		Payload: mustJSON(wsErrorEnvelope{
			Error: wsError{
				Code:      code,
				Message:   message,
				Retryable: false,
			},
		}),
	})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("failed to marshal websocket frame payload: %v", err)
		return nil
	}
	return b
}

// Server hosts the relay HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           *storagebbolt.Store
	gameDB          *gamedatasqlite.Store
}

// NewServer builds a configured relay server, opening its stores.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	engine := &Engine{}
	server := &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
	}

	if strings.TrimSpace(config.StorePath) != "" {
		store, err := storagebbolt.Open(config.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open persona store: %w", err)
		}
		server.store = store
		engine.Personas = store
		engine.Preferences = store
	}

	var catalog *gamedata.Catalog
	if strings.TrimSpace(config.GameDataPath) != "" {
		gameDB, err := gamedatasqlite.Open(config.GameDataPath)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("open game data: %w", err)
		}
		server.gameDB = gameDB
		catalog, err = gameDB.LoadCatalog(ctx)
		if err != nil {
			server.Close()
			return nil, fmt.Errorf("load game data: %w", err)
		}
	}

	resolver := &pipeline.Resolver{}
	if catalog != nil {
		resolver.Moves = catalog
		resolver.Types = catalog
		resolver.Metronome = catalog
	}
	if server.store != nil {
		resolver.TimezoneFor = server.store.TimezoneFor
	}
	engine.Resolver = resolver

	server.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(engine),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	return server, nil
}

// Run creates and serves a relay server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(ctx, config)
	if err != nil {
		return fmt.Errorf("init relay server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve relay: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("relay server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("relay server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close persona store: %v", err)
		}
	}
	if s.gameDB != nil {
		if err := s.gameDB.Close(); err != nil {
			log.Printf("close game data store: %v", err)
		}
	}
}
