package httpserver

import (
	"xiangqi/internal/engine"
	core "xiangqi/internal/game"
	"xiangqi/internal/notation"
	"xiangqi/internal/xiangqi"
)

// 前端坐标：row 0 为黑方底线
type PositionDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type PieceDTO struct {
	Type  string `json:"type"`  // k a e h r c p
	Color string `json:"color"` // red / black
}

type MoveDTO struct {
	FromPos   PositionDTO `json:"from_pos"`
	ToPos     PositionDTO `json:"to_pos"`
	Piece     PieceDTO    `json:"piece"`
	Captured  *PieceDTO   `json:"captured,omitempty"`
	Notation  string      `json:"notation"` // ICCS，如 h2e2
	GaveCheck bool        `json:"gave_check"`
}

// 只有起止点的招法（合法着法列表）
type SimpleMoveDTO struct {
	FromPos PositionDTO `json:"from_pos"`
	ToPos   PositionDTO `json:"to_pos"`
}

type GameStateDTO struct {
	SessionID         string          `json:"session_id"`
	Board             [][]*PieceDTO   `json:"board"`
	FEN               string          `json:"fen"`
	CurrentPlayer     string          `json:"current_player"`
	PlayerColor       string          `json:"player_color"`
	MoveHistory       []MoveDTO       `json:"move_history"`
	LegalMoves        []SimpleMoveDTO `json:"legal_moves"`
	IsCheck           bool            `json:"is_check"`
	IsCheckmate       bool            `json:"is_checkmate"`
	IsStalemate       bool            `json:"is_stalemate"`
	Status            string          `json:"status"`
	Winner            string          `json:"winner,omitempty"`
	DrawReason        string          `json:"draw_reason,omitempty"`
	MovesSinceCapture int             `json:"moves_since_capture"`
}

type NewGameRequest struct {
	PlayerColor string `json:"player_color"`
}

type NewGameResponse struct {
	SessionID string        `json:"session_id"`
	GameState *GameStateDTO `json:"game_state"`
}

type MoveRequest struct {
	SessionID string      `json:"session_id"`
	FromPos   PositionDTO `json:"from_pos"`
	ToPos     PositionDTO `json:"to_pos"`
}

// MoveResponse 也用于悔棋
type MoveResponse struct {
	Success   bool          `json:"success"`
	GameState *GameStateDTO `json:"game_state,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type UndoRequest struct {
	SessionID string `json:"session_id"`
	Moves     *int   `json:"moves"` // 缺省 2（人机各退一步）
}

type AIMoveRequest struct {
	SessionID string `json:"session_id"`
}

type AIMoveResponse struct {
	Success     bool          `json:"success"`
	Move        *MoveDTO      `json:"move,omitempty"`
	Explanation string        `json:"explanation,omitempty"`
	Evaluation  string        `json:"evaluation,omitempty"`
	Score       int           `json:"score"`
	Depth       int           `json:"depth"`
	Nodes       int64         `json:"nodes"`
	TimeMs      int64         `json:"time_ms"`
	GameState   *GameStateDTO `json:"game_state,omitempty"`
	Error       string        `json:"error,omitempty"`
}

type DifficultyRequest struct {
	Difficulty int `json:"difficulty"`
}

type DifficultyResponse struct {
	Message    string `json:"message,omitempty"`
	Difficulty int    `json:"difficulty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

var pieceLetters = map[xiangqi.PieceType]string{
	xiangqi.PieceGeneral:  "k",
	xiangqi.PieceAdvisor:  "a",
	xiangqi.PieceElephant: "e",
	xiangqi.PieceHorse:    "h",
	xiangqi.PieceChariot:  "r",
	xiangqi.PieceCannon:   "c",
	xiangqi.PieceSoldier:  "p",
}

func sideFromString(s string) (xiangqi.Side, bool) {
	switch s {
	case "red", "":
		return xiangqi.Red, true
	case "black":
		return xiangqi.Black, true
	}
	return xiangqi.NoSide, false
}

func squareToDTO(s xiangqi.Square) PositionDTO {
	return PositionDTO{Row: s.Row(), Col: s.Col()}
}

func pieceToDTO(p xiangqi.Piece) *PieceDTO {
	if p == xiangqi.Empty {
		return nil
	}
	return &PieceDTO{Type: pieceLetters[p.Type()], Color: p.Side().String()}
}

func moveToDTO(m xiangqi.Move) MoveDTO {
	return MoveDTO{
		FromPos:   squareToDTO(m.From),
		ToPos:     squareToDTO(m.To),
		Piece:     *pieceToDTO(m.Moved),
		Captured:  pieceToDTO(m.Captured),
		Notation:  notation.FormatMove(m.From, m.To),
		GaveCheck: m.GaveCheck,
	}
}

func stateToDTO(s *core.Session) *GameStateDTO {
	board := make([][]*PieceDTO, xiangqi.Rows)
	for r := 0; r < xiangqi.Rows; r++ {
		board[r] = make([]*PieceDTO, xiangqi.Cols)
		for c := 0; c < xiangqi.Cols; c++ {
			board[r][c] = pieceToDTO(s.Board.At(xiangqi.MustSquare(r, c)))
		}
	}
	history := make([]MoveDTO, len(s.Moves))
	for i, m := range s.Moves {
		history[i] = moveToDTO(m)
	}
	var legal []SimpleMoveDTO
	if !s.IsOver() {
		for _, m := range xiangqi.LegalMoves(s.Board, s.SideToMove) {
			legal = append(legal, SimpleMoveDTO{FromPos: squareToDTO(m.From), ToPos: squareToDTO(m.To)})
		}
	}
	if legal == nil {
		legal = []SimpleMoveDTO{}
	}
	dto := &GameStateDTO{
		SessionID:         s.ID,
		Board:             board,
		FEN:               notation.EncodeFEN(s.Board, s.SideToMove),
		CurrentPlayer:     s.SideToMove.String(),
		PlayerColor:       s.PlayerSide.String(),
		MoveHistory:       history,
		LegalMoves:        legal,
		IsCheck:           s.InCheck,
		IsCheckmate:       s.IsCheckmate(),
		IsStalemate:       s.IsStalemate(),
		Status:            string(s.Status),
		DrawReason:        string(s.DrawReason),
		MovesSinceCapture: s.MovesSinceCapture,
	}
	if s.Winner != xiangqi.NoSide {
		dto.Winner = s.Winner.String()
	}
	return dto
}

// explain 给 AI 着法一句简短说明。
func explain(m xiangqi.Move, res engine.SearchResult, eval string) string {
	text := m.Moved.String() + " " + notation.FormatMove(m.From, m.To)
	if m.IsCapture() {
		text += " captures " + m.Captured.String()
	}
	if m.GaveCheck {
		text += ", check"
	}
	if engine.IsMateScore(res.Score) && res.Score > 0 {
		return text + ", forced mate found"
	}
	return text + ", position " + eval
}
