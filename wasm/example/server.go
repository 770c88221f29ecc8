//go:build !js

// Demo server for the wasm build. It bridges a shell PTY to a browser over a
// websocket and mirrors the byte stream into a server-side terminal, so the
// current screen is also available as JSON at /snapshot.
package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
	gridterm "github.com/gridterm/gridterm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for demo
	},
}

type resizeMessage struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

// sessions tracks the server-side mirror terminal of each websocket, so the
// snapshot endpoint can inspect what the browser is rendering.
type sessions struct {
	mu    sync.Mutex
	terms map[int]*gridterm.Terminal
	next  int
}

func (s *sessions) add(term *gridterm.Terminal) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.terms[s.next] = term
	return s.next
}

func (s *sessions) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.terms, id)
}

// latest returns the most recently opened session's terminal, or nil.
func (s *sessions) latest() *gridterm.Terminal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var term *gridterm.Terminal
	best := -1
	for id, t := range s.terms {
		if id > best {
			best = id
			term = t
		}
	}
	return term
}

var active = &sessions{terms: make(map[int]*gridterm.Terminal)}

// wsBinaryWriter adapts a websocket connection to io.Writer so the PTY
// output stream can be teed through it.
type wsBinaryWriter struct {
	conn *websocket.Conn
}

func (w *wsBinaryWriter) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Determine shell
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}

	// Start PTY with shell
	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.Start(cmd)
	if err != nil {
		log.Printf("PTY start error: %v", err)
		conn.WriteMessage(websocket.TextMessage, []byte("Error starting shell: "+err.Error()))
		return
	}
	defer func() {
		ptmx.Close()
		cmd.Process.Kill()
		cmd.Wait()
	}()

	// Set initial size
	pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 80})

	// Server-side mirror of the screen. Query responses (DSR, DA) go
	// straight back into the PTY.
	term := gridterm.New(
		gridterm.WithSize(24, 80),
		gridterm.WithScrollback(gridterm.NewMemoryScrollback(1000)),
		gridterm.WithResponse(ptmx),
	)
	id := active.add(term)
	defer active.remove(id)

	log.Printf("New PTY session %d started: %s", id, shell)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// PTY -> WebSocket, teed into the mirror terminal.
	go func() {
		defer conn.Close()
		err := term.FeedLoop(ctx, io.TeeReader(ptmx, &wsBinaryWriter{conn: conn}))
		if err != nil && ctx.Err() == nil {
			log.Printf("session %d feed error: %v", id, err)
		}
	}()

	// WebSocket -> PTY
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		switch msgType {
		case websocket.TextMessage:
			// Check for resize message
			var msg resizeMessage
			if err := json.Unmarshal(data, &msg); err == nil && msg.Type == "resize" {
				if msg.Cols > 0 && msg.Rows > 0 {
					pty.Setsize(ptmx, &pty.Winsize{
						Rows: uint16(msg.Rows),
						Cols: uint16(msg.Cols),
					})
					term.Resize(msg.Rows, msg.Cols)
					log.Printf("Resized to %dx%d", msg.Cols, msg.Rows)
				}
			}
		case websocket.BinaryMessage:
			// Write to PTY
			_, err = ptmx.Write(data)
			if err != nil {
				log.Printf("PTY write error: %v", err)
				return
			}
		}
	}
}

// handleSnapshot serves the current screen of the most recent session as JSON.
func handleSnapshot(w http.ResponseWriter, r *http.Request) {
	term := active.latest()
	if term == nil {
		http.Error(w, "no active session", http.StatusNotFound)
		return
	}

	detail := gridterm.SnapshotDetail(r.URL.Query().Get("detail"))
	switch detail {
	case gridterm.SnapshotDetailText, gridterm.SnapshotDetailStyled, gridterm.SnapshotDetailFull:
	default:
		detail = gridterm.SnapshotDetailStyled
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(term.Snapshot(detail)); err != nil {
		log.Printf("snapshot encode error: %v", err)
	}
}

func main() {
	// Static files
	fs := http.FileServer(http.Dir("."))
	http.Handle("/", fs)

	// WebSocket endpoint
	http.HandleFunc("/ws", handleWebSocket)

	// Server-side screen inspection
	http.HandleFunc("/snapshot", handleSnapshot)

	// Handle graceful shutdown
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	addr := ":8080"
	log.Printf("Server starting on http://localhost%s", addr)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
