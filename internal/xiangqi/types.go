package xiangqi

type Side int8

const (
	NoSide Side = -1
	Red    Side = 0
	Black  Side = 1
)

// Opponent 返回对方；NoSide 仍为 NoSide。
func (s Side) Opponent() Side {
	switch s {
	case Red:
		return Black
	case Black:
		return Red
	}
	return NoSide
}

func (s Side) String() string {
	switch s {
	case Red:
		return "red"
	case Black:
		return "black"
	}
	return "none"
}

type PieceType int8

const (
	PieceNone     PieceType = iota
	PieceGeneral            // 帅 / 将
	PieceAdvisor            // 仕 / 士
	PieceElephant           // 相 / 象
	PieceHorse              // 马
	PieceChariot            // 车
	PieceCannon             // 炮
	PieceSoldier            // 兵 / 卒

	numPieceTypes = 8
)

func (pt PieceType) String() string {
	switch pt {
	case PieceGeneral:
		return "general"
	case PieceAdvisor:
		return "advisor"
	case PieceElephant:
		return "elephant"
	case PieceHorse:
		return "horse"
	case PieceChariot:
		return "chariot"
	case PieceCannon:
		return "cannon"
	case PieceSoldier:
		return "soldier"
	}
	return "none"
}

// Piece 0=空；>0 红；<0 黑；abs=PieceType
type Piece int8

const Empty Piece = 0

func MakePiece(side Side, pt PieceType) Piece {
	if pt <= PieceNone || pt >= numPieceTypes || side == NoSide {
		return Empty
	}
	if side == Red {
		return Piece(pt)
	}
	return -Piece(pt)
}

func (p Piece) IsEmpty() bool { return p == Empty }

func (p Piece) Type() PieceType {
	if p < 0 {
		return PieceType(-p)
	}
	return PieceType(p)
}

func (p Piece) Side() Side {
	if p == Empty {
		return NoSide
	}
	if p > 0 {
		return Red
	}
	return Black
}

func (p Piece) String() string {
	if p == Empty {
		return "empty"
	}
	return p.Side().String() + " " + p.Type().String()
}

// Move 是一条已被接受的着法记录；只由对局状态机生成，进入历史后不再修改。
type Move struct {
	From     Square
	To       Square
	Moved    Piece
	Captured Piece
	// 走完这一步后对方是否被将军，用于长将判定
	GaveCheck bool
}

func (m Move) IsCapture() bool { return m.Captured != Empty }
