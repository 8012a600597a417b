package core

// Agent is one robot with a start and a goal cell.
type Agent struct {
	ID    int
	Start Cell
	Goal  Cell
}

// AddAgent appends an agent and returns its ID.
func (inst *Instance) AddAgent(start, goal Cell) int {
	id := len(inst.Agents)
	inst.Agents = append(inst.Agents, Agent{ID: id, Start: start, Goal: goal})
	return id
}

// AgentAt returns the index of the agent starting at c and the index of
// the agent whose goal is c, -1 when there is none.
func (inst *Instance) AgentAt(c Cell) (start, goal int) {
	start, goal = -1, -1
	for i, a := range inst.Agents {
		if a.Start == c {
			start = i
		}
		if a.Goal == c {
			goal = i
		}
	}
	return start, goal
}

// ClearLocation removes every agent that starts or ends at c and
// renumbers the rest.
func (inst *Instance) ClearLocation(c Cell) {
	kept := inst.Agents[:0]
	for _, a := range inst.Agents {
		if a.Start == c || a.Goal == c {
			continue
		}
		a.ID = len(kept)
		kept = append(kept, a)
	}
	inst.Agents = kept
}
