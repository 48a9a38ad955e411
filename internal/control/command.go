package control

import (
	"fmt"

	"voxelpilot.ai/internal/goal"
)

// CommandType is the instruction kind handed to the executor. The set is the
// wire contract between arbitration and execution; it is closed.
type CommandType uint8

const (
	// CommandNoOp means "no opinion": hold whatever the executor is doing.
	CommandNoOp CommandType = iota
	// CommandTravel paths toward the goal.
	CommandTravel
	// CommandTravelAndHold paths toward the goal and holds position on arrival,
	// performing the goal's work if it has any.
	CommandTravelAndHold
	// CommandRequestPause halts movement at the next safe point.
	CommandRequestPause
	// CommandCancel drops the current action and goal.
	CommandCancel
)

var commandTypeNames = [...]string{
	CommandNoOp:          "NO_OP",
	CommandTravel:        "TRAVEL",
	CommandTravelAndHold: "TRAVEL_AND_HOLD",
	CommandRequestPause:  "REQUEST_PAUSE",
	CommandCancel:        "CANCEL",
}

func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return fmt.Sprintf("CommandType(%d)", uint8(t))
}

// MarshalText lets command types travel as their names in JSON.
func (t CommandType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Command is what a process decides for one tick. The zero value is the no-op.
type Command struct {
	Goal goal.Goal
	Type CommandType
}

func NoOp() Command { return Command{} }

func Travel(g goal.Goal) Command { return Command{Goal: g, Type: CommandTravel} }

func TravelAndHold(g goal.Goal) Command { return Command{Goal: g, Type: CommandTravelAndHold} }

func RequestPause() Command { return Command{Type: CommandRequestPause} }

func Cancel() Command { return Command{Type: CommandCancel} }

// IsNoOp reports whether the command carries no instruction.
func (c Command) IsNoOp() bool { return c.Type == CommandNoOp }

func (c Command) String() string {
	if c.Goal == nil {
		return c.Type.String()
	}
	return fmt.Sprintf("%s %s", c.Type, c.Goal)
}
