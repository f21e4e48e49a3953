// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package simulation

import (
	"fmt"
	"time"

	"github.com/poiesic/traingen/core"
)

// Ending thresholds as a percentage of the maximum possible score.
const (
	successThreshold = 80
	partialThreshold = 50
)

// Quality rates how good a choice is.
type Quality string

const (
	QualityOptimal    Quality = "optimal"
	QualityAcceptable Quality = "acceptable"
	QualityPoor       Quality = "poor"
)

// Ending classifies how a completed scenario went.
type Ending string

const (
	EndingSuccess Ending = "success"
	EndingPartial Ending = "partial"
	EndingFailure Ending = "failure"
)

// Option is one choice available at a node.
type Option struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	NextNodeID string  `json:"nextNodeId"`
	Quality    Quality `json:"quality"`
	Points     int     `json:"points"`
	Feedback   string  `json:"feedback"`
}

// Node is one situation in a branching scenario. A node with no options is
// terminal.
type Node struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Options  []Option `json:"options,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
	Terminal bool     `json:"isTerminal,omitempty"`
}

func (n Node) terminal() bool {
	return n.Terminal || len(n.Options) == 0
}

// Choice records one decision made during a session.
type Choice struct {
	NodeID   string    `json:"nodeId"`
	OptionID string    `json:"selectedOptionId"`
	At       time.Time `json:"timestamp"`
}

// State is the progress of one scenario session. States are values: Select
// returns a new state and never mutates its input.
type State struct {
	CurrentNodeID string   `json:"currentNodeId"`
	History       []Choice `json:"history"`
	Score         int      `json:"score"`
	MaxScore      int      `json:"maxPossibleScore"`
	Complete      bool     `json:"isComplete"`
	Ending        Ending   `json:"endingType,omitempty"`
}

// ScenarioEngine walks a branching scenario graph. The engine itself is
// immutable after construction.
type ScenarioEngine struct {
	nodes   map[string]Node
	startID string
	max     int
}

// NewScenarioEngine builds an engine from a node list. The first node is
// the start node. Node ids must be unique and every option must target an
// existing node.
func NewScenarioEngine(nodes []Node) (*ScenarioEngine, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}

	byID := make(map[string]Node, len(nodes))
	for _, node := range nodes {
		if _, exists := byID[node.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, node.ID)
		}
		byID[node.ID] = node
	}
	for _, node := range nodes {
		for _, opt := range node.Options {
			if _, ok := byID[opt.NextNodeID]; !ok {
				return nil, fmt.Errorf("%w: option %q on node %q targets %q",
					ErrDanglingOption, opt.ID, node.ID, opt.NextNodeID)
			}
		}
	}

	return &ScenarioEngine{
		nodes:   byID,
		startID: nodes[0].ID,
		max:     maxPossibleScore(nodes),
	}, nil
}

// maxPossibleScore sums the best option at every decision node. Scenarios
// without scored options fall back to a 100-point scale.
func maxPossibleScore(nodes []Node) int {
	total := 0
	for _, node := range nodes {
		best := 0
		for _, opt := range node.Options {
			if opt.Points > best {
				best = opt.Points
			}
		}
		total += best
	}
	if total == 0 {
		return 100
	}
	return total
}

// Start begins a new session at the start node.
func (e *ScenarioEngine) Start() State {
	return State{
		CurrentNodeID: e.startID,
		MaxScore:      e.max,
	}
}

// Node returns the node a state is currently on.
func (e *ScenarioEngine) Node(state State) (Node, error) {
	node, ok := e.nodes[state.CurrentNodeID]
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrUnknownNode, state.CurrentNodeID)
	}
	return node, nil
}

// Select applies a choice and returns the resulting state. Reaching a
// terminal node completes the scenario and classifies the ending by score
// percentage.
func (e *ScenarioEngine) Select(state State, optionID string) (State, error) {
	if state.Complete {
		return state, ErrScenarioComplete
	}
	current, err := e.Node(state)
	if err != nil {
		return state, err
	}

	var selected *Option
	for i := range current.Options {
		if current.Options[i].ID == optionID {
			selected = &current.Options[i]
			break
		}
	}
	if selected == nil {
		return state, fmt.Errorf("%w: %q on node %q", ErrUnknownOption, optionID, current.ID)
	}

	next := e.nodes[selected.NextNodeID]

	history := make([]Choice, len(state.History), len(state.History)+1)
	copy(history, state.History)
	history = append(history, Choice{
		NodeID:   state.CurrentNodeID,
		OptionID: optionID,
		At:       time.Now(),
	})

	out := State{
		CurrentNodeID: selected.NextNodeID,
		History:       history,
		Score:         state.Score + selected.Points,
		MaxScore:      state.MaxScore,
		Complete:      next.terminal(),
	}
	if out.Complete {
		out.Ending = classifyEnding(out.Score, out.MaxScore)
	}
	return out, nil
}

func classifyEnding(score, maxScore int) Ending {
	if maxScore <= 0 {
		return EndingFailure
	}
	percentage := score * 100 / maxScore
	switch {
	case percentage >= successThreshold:
		return EndingSuccess
	case percentage >= partialThreshold:
		return EndingPartial
	default:
		return EndingFailure
	}
}

// LastFeedback returns the feedback attached to the most recent choice, or
// "" when no choice has been made.
func (e *ScenarioEngine) LastFeedback(state State) string {
	if len(state.History) == 0 {
		return ""
	}
	last := state.History[len(state.History)-1]
	node, ok := e.nodes[last.NodeID]
	if !ok {
		return ""
	}
	for _, opt := range node.Options {
		if opt.ID == last.OptionID {
			return opt.Feedback
		}
	}
	return ""
}

// Outcome point values used when adapting generated scenario scripts.
var outcomePoints = map[string]struct {
	quality Quality
	points  int
}{
	"good":    {QualityOptimal, 10},
	"neutral": {QualityAcceptable, 5},
	"bad":     {QualityPoor, 0},
}

// NodesFromScript adapts a generated branching script into runtime nodes.
// Option ids are assigned positionally; outcomes map to optimal/acceptable/
// poor with 10/5/0 points. Options pointing at branches the model never
// produced are routed to a synthesized terminal node so the graph stays
// walkable.
func NodesFromScript(script core.SimulationScript) []Node {
	if len(script.Branches) == 0 {
		return nil
	}

	known := make(map[string]bool, len(script.Branches))
	for _, branch := range script.Branches {
		known[branch.ID] = true
	}

	const endNodeID = "end"
	needsEnd := false

	nodes := make([]Node, 0, len(script.Branches)+1)
	for _, branch := range script.Branches {
		node := Node{
			ID:      branch.ID,
			Content: branch.Situation,
		}
		for i, opt := range branch.Options {
			grade, ok := outcomePoints[opt.Outcome]
			if !ok {
				grade = outcomePoints["neutral"]
			}
			nextID := opt.NextBranchID
			if !known[nextID] {
				nextID = endNodeID
				needsEnd = true
			}
			node.Options = append(node.Options, Option{
				ID:         fmt.Sprintf("opt-%d", i+1),
				Text:       opt.Text,
				NextNodeID: nextID,
				Quality:    grade.quality,
				Points:     grade.points,
				Feedback:   opt.Feedback,
			})
		}
		nodes = append(nodes, node)
	}

	if needsEnd && !known[endNodeID] {
		nodes = append(nodes, Node{
			ID:       endNodeID,
			Content:  "The scenario has ended.",
			Terminal: true,
		})
	}
	return nodes
}
