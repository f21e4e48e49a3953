package simulation

import "errors"

var (
	// ErrNoNodes is returned when an engine is built without any nodes.
	ErrNoNodes = errors.New("simulation: scenario has no nodes")

	// ErrDuplicateNode is returned when two nodes share an id.
	ErrDuplicateNode = errors.New("simulation: duplicate node id")

	// ErrDanglingOption is returned when an option points at a node that
	// does not exist.
	ErrDanglingOption = errors.New("simulation: option targets unknown node")

	// ErrUnknownNode is returned when a state references a node the engine
	// does not know.
	ErrUnknownNode = errors.New("simulation: unknown node")

	// ErrUnknownOption is returned when a selected option does not exist
	// on the current node.
	ErrUnknownOption = errors.New("simulation: unknown option")

	// ErrScenarioComplete is returned when a choice is made on a finished
	// scenario.
	ErrScenarioComplete = errors.New("simulation: scenario is complete")
)
