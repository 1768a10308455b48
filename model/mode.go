package model

// EditMode selects how pointer input over the canvas is interpreted.
type EditMode int

const (
	ModeSelect EditMode = iota
	ModeMoveWire
	ModeMoveEndpoint
	ModeAddWire
	ModeDelete
)

func (m EditMode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModeMoveWire:
		return "move-wire"
	case ModeMoveEndpoint:
		return "move-endpoint"
	case ModeAddWire:
		return "add-wire"
	case ModeDelete:
		return "delete"
	default:
		return "unknown"
	}
}
