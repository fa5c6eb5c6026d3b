package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	servergame "xiangqi/internal/server/game"
)

func newTestServer(t *testing.T) (*httptest.Server, *servergame.Manager) {
	t.Helper()
	log := zerolog.Nop()
	mgr := servergame.NewManager(servergame.Options{SearchDepth: 1, Logger: log})
	hub := NewHub(log)
	mgr.SetPublisher(hub)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(NewHandler(mgr, hub, log), t.TempDir(), ""))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, mgr
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func newGame(t *testing.T, base, color string) NewGameResponse {
	t.Helper()
	var ng NewGameResponse
	if code := postJSON(t, base+"/api/game/new", NewGameRequest{PlayerColor: color}, &ng); code != http.StatusOK {
		t.Fatalf("new game status = %d", code)
	}
	return ng
}

func TestGameFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	ng := newGame(t, srv.URL, "red")
	if ng.SessionID == "" || ng.GameState == nil {
		t.Fatalf("bad new game response: %+v", ng)
	}
	if ng.GameState.CurrentPlayer != "red" || len(ng.GameState.LegalMoves) != 44 {
		t.Fatalf("initial state: player=%s legal=%d", ng.GameState.CurrentPlayer, len(ng.GameState.LegalMoves))
	}
	if got := ng.GameState.Board[9][4]; got == nil || got.Type != "k" || got.Color != "red" {
		t.Fatalf("board[9][4] = %+v", got)
	}

	var mr MoveResponse
	code := postJSON(t, srv.URL+"/api/game/move", MoveRequest{
		SessionID: ng.SessionID,
		FromPos:   PositionDTO{Row: 7, Col: 1},
		ToPos:     PositionDTO{Row: 7, Col: 4},
	}, &mr)
	if code != http.StatusOK || !mr.Success {
		t.Fatalf("move status=%d resp=%+v", code, mr)
	}
	if h := mr.GameState.MoveHistory; len(h) != 1 || h[0].Notation != "b2e2" {
		t.Fatalf("history = %+v", h)
	}

	var bad MoveResponse
	code = postJSON(t, srv.URL+"/api/game/move", MoveRequest{
		SessionID: ng.SessionID,
		FromPos:   PositionDTO{Row: 0, Col: 0},
		ToPos:     PositionDTO{Row: 5, Col: 1},
	}, &bad)
	if code != http.StatusBadRequest || bad.Success || bad.Error == "" {
		t.Fatalf("illegal move status=%d resp=%+v", code, bad)
	}

	// 只有一步历史，默认悔两步应失败
	code = postJSON(t, srv.URL+"/api/game/undo", map[string]any{"session_id": ng.SessionID}, &bad)
	if code != http.StatusBadRequest {
		t.Fatalf("default undo status = %d", code)
	}

	var ai AIMoveResponse
	code = postJSON(t, srv.URL+"/api/ai/move", AIMoveRequest{SessionID: ng.SessionID}, &ai)
	if code != http.StatusOK || !ai.Success || ai.Move == nil {
		t.Fatalf("ai move status=%d resp=%+v", code, ai)
	}
	if ai.Move.Piece.Color != "black" || ai.GameState.CurrentPlayer != "red" || ai.Explanation == "" {
		t.Fatalf("ai move = %+v", ai)
	}

	var undo MoveResponse
	code = postJSON(t, srv.URL+"/api/game/undo", map[string]any{"session_id": ng.SessionID}, &undo)
	if code != http.StatusOK || len(undo.GameState.MoveHistory) != 0 {
		t.Fatalf("undo status=%d resp=%+v", code, undo)
	}

	resp, err := http.Get(srv.URL + "/api/game/state/" + ng.SessionID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	defer resp.Body.Close()
	var st GameStateDTO
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if st.FEN != "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w" {
		t.Fatalf("fen after undo = %q", st.FEN)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/game/state/nope")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown session status = %d", resp.StatusCode)
	}

	var er ErrorResponse
	if code := postJSON(t, srv.URL+"/api/game/move", MoveRequest{SessionID: "nope"}, &er); code != http.StatusNotFound {
		t.Fatalf("move on unknown session status = %d", code)
	}
	if code := postJSON(t, srv.URL+"/api/game/new", NewGameRequest{PlayerColor: "green"}, &er); code != http.StatusBadRequest {
		t.Fatalf("bad color status = %d", code)
	}
	ng := newGame(t, srv.URL, "black")
	code := postJSON(t, srv.URL+"/api/game/move", MoveRequest{
		SessionID: ng.SessionID,
		FromPos:   PositionDTO{Row: 10, Col: 0},
		ToPos:     PositionDTO{Row: 9, Col: 0},
	}, &er)
	if code != http.StatusBadRequest {
		t.Fatalf("off-board status = %d", code)
	}
	code = postJSON(t, srv.URL+"/api/game/undo", map[string]any{"session_id": ng.SessionID, "moves": 11}, &er)
	if code != http.StatusBadRequest {
		t.Fatalf("undo 11 status = %d", code)
	}

	resp, err = http.Post(srv.URL+"/api/game/move", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", resp.StatusCode)
	}
}

func TestDifficultyAndHealth(t *testing.T) {
	srv, mgr := newTestServer(t)

	var dr DifficultyResponse
	if code := postJSON(t, srv.URL+"/api/settings/difficulty?difficulty=5", nil, &dr); code != http.StatusOK || dr.Difficulty != 5 {
		t.Fatalf("set difficulty status=%d resp=%+v", code, dr)
	}
	if mgr.Difficulty() != 5 {
		t.Fatalf("manager difficulty = %d", mgr.Difficulty())
	}
	if code := postJSON(t, srv.URL+"/api/settings/difficulty", DifficultyRequest{Difficulty: 9}, nil); code != http.StatusBadRequest {
		t.Fatalf("invalid difficulty status = %d", code)
	}

	resp, err := http.Get(srv.URL + "/api/settings/difficulty")
	if err != nil {
		t.Fatalf("get difficulty: %v", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil || dr.Difficulty != 5 {
		t.Fatalf("get difficulty = %+v, %v", dr, err)
	}

	hr, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer hr.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(hr.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Fatalf("health = %v, %v", body, err)
	}
}

func readState(t *testing.T, conn *websocket.Conn) GameStateDTO {
	t.Helper()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read ws: %v", err)
		}
		if msg.Type != "state" {
			continue
		}
		var st GameStateDTO
		if err := json.Unmarshal(msg.Payload, &st); err != nil {
			t.Fatalf("decode ws payload: %v", err)
		}
		return st
	}
}

func TestWatcherReceivesUpdates(t *testing.T) {
	srv, _ := newTestServer(t)
	ng := newGame(t, srv.URL, "red")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/game/ws/" + ng.SessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if st := readState(t, conn); st.SessionID != ng.SessionID || len(st.MoveHistory) != 0 {
		t.Fatalf("initial ws state = %+v", st)
	}

	code := postJSON(t, srv.URL+"/api/game/move", MoveRequest{
		SessionID: ng.SessionID,
		FromPos:   PositionDTO{Row: 6, Col: 4},
		ToPos:     PositionDTO{Row: 5, Col: 4},
	}, nil)
	if code != http.StatusOK {
		t.Fatalf("move status = %d", code)
	}
	if st := readState(t, conn); len(st.MoveHistory) != 1 || st.CurrentPlayer != "black" {
		t.Fatalf("pushed state = %+v", st)
	}

	if err := conn.WriteJSON(wsMessage{Type: "request_state"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if st := readState(t, conn); len(st.MoveHistory) != 1 {
		t.Fatalf("requested state = %+v", st)
	}

	if _, _, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(srv.URL, "http")+"/api/game/ws/missing", nil); err == nil {
		t.Fatalf("watching an unknown session should fail")
	}
}

func TestStaticRedirects(t *testing.T) {
	srv, _ := newTestServer(t)
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	cases := []struct {
		ua, query, want string
	}{
		{"Mozilla/5.0 (X11; Linux x86_64)", "", "/web/"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", "", "/web_mobile/"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)", "?view=desktop", "/web/"},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/"+tc.query, nil)
		req.Header.Set("User-Agent", tc.ua)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("GET /: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != tc.want {
			t.Fatalf("ua=%q query=%q -> %d %q, want %q", tc.ua, tc.query, resp.StatusCode, resp.Header.Get("Location"), tc.want)
		}
	}
}
