package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wonny/stockmarket/internal/clock"
	"github.com/wonny/stockmarket/internal/pagination"
	"github.com/wonny/stockmarket/internal/registry"
	"github.com/wonny/stockmarket/internal/session"
	"github.com/wonny/stockmarket/internal/stats"
	"github.com/wonny/stockmarket/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// SessionHandler serves paged views of the market, one cursor per session
type SessionHandler struct {
	sessions *session.Manager
	registry *registry.Registry
	clock    clock.Clock
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewSessionHandler creates a new session handler. Live streams re-render
// on every event of c.
func NewSessionHandler(sessions *session.Manager, reg *registry.Registry, c clock.Clock, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		registry: reg,
		clock:    c,
		logger:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// PageResponse is one rendered page. Slots has one entry per display slot;
// empty slots are null.
type PageResponse struct {
	Session string         `json:"session"`
	Now     time.Time      `json:"now"`
	Index   int            `json:"index"`
	Count   int            `json:"count"`
	Size    int            `json:"size"`
	Slots   []*stats.Quote `json:"slots"`
}

func (h *SessionHandler) render(s *session.Session, page pagination.Page) PageResponse {
	return PageResponse{
		Session: s.ID,
		Now:     h.registry.Now(),
		Index:   page.Index,
		Count:   page.Count,
		Size:    len(page.Slots),
		Slots:   h.registry.QuoteSlots(page.Slots),
	}
}

// Create opens a viewing session on page 0
// POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	h.logger.WithField("session", s.ID).Debug("Session created")

	respondJSON(w, http.StatusCreated, h.render(s, s.Pager.Current()))
}

// Page returns the page under the session's cursor. ?index=N moves the
// cursor to page N first, wrapped into range.
// GET /api/sessions/{id}/page
func (h *SessionHandler) Page(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("index")
	if raw == "" {
		h.move(w, r, (*pagination.Pager).Current)
		return
	}

	index, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	h.move(w, r, func(p *pagination.Pager) pagination.Page { return p.Seek(index) })
}

// Next moves the session one page forward, wrapping to the first page
// POST /api/sessions/{id}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*pagination.Pager).Next)
}

// Previous moves the session one page back, wrapping to the last page
// POST /api/sessions/{id}/previous
func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*pagination.Pager).Previous)
}

func (h *SessionHandler) move(w http.ResponseWriter, r *http.Request, step func(*pagination.Pager) pagination.Page) {
	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.render(s, step(s.Pager)))
}

// Delete closes a session
// DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream upgrades to a websocket that pushes the session's page after every
// clock event. The client may send "next" or "previous" to move the cursor.
// GET /api/sessions/{id}/stream
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	st := &stream{
		handler: h,
		session: s,
		conn:    conn,
		moves:   make(chan func(*pagination.Pager) pagination.Page, 8),
		ticks:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	// The listener runs on the clock's goroutine and must not block.
	sub := h.clock.Subscribe(func(clock.TimeChanged) {
		select {
		case st.ticks <- struct{}{}:
		default:
		}
	})

	go st.readLoop()
	st.writeLoop()

	sub.Unsubscribe()
	conn.Close()

	h.logger.WithField("session", s.ID).Debug("Stream closed")
}

type stream struct {
	handler *SessionHandler
	session *session.Session
	conn    *websocket.Conn
	moves   chan func(*pagination.Pager) pagination.Page
	ticks   chan struct{}
	done    chan struct{}
}

// readLoop handles cursor commands and notices when the client goes away
func (st *stream) readLoop() {
	defer close(st.done)

	st.conn.SetReadDeadline(time.Now().Add(pongWait))
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := st.conn.ReadMessage()
		if err != nil {
			return
		}

		var move func(*pagination.Pager) pagination.Page
		switch string(msg) {
		case "next":
			move = (*pagination.Pager).Next
		case "previous":
			move = (*pagination.Pager).Previous
		default:
			move = (*pagination.Pager).Current
		}

		select {
		case st.moves <- move:
		default:
		}
	}
}

// writeLoop pushes pages until the connection breaks
func (st *stream) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := st.push(st.session.Pager.Current()); err != nil {
		return
	}

	for {
		select {
		case <-st.done:
			return
		case move := <-st.moves:
			if err := st.push(move(st.session.Pager)); err != nil {
				return
			}
		case <-st.ticks:
			if err := st.push(st.session.Pager.Current()); err != nil {
				return
			}
		case <-ping.C:
			st.handler.sessions.Touch(st.session)
			st.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := st.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (st *stream) push(page pagination.Page) error {
	st.handler.sessions.Touch(st.session)

	st.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := st.conn.WriteJSON(st.handler.render(st.session, page)); err != nil {
		st.handler.logger.WithError(err).WithField("session", st.session.ID).Debug("Stream write failed")
		return err
	}
	return nil
}
