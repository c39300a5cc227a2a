package services

import (
	"fmt"

	"stockwise/internal/models"
)

// cycleTransitions lists the legal moves of the cycle state machine. A
// forecast cycle alternates PROJECTING and ALERTING once per material.
// FAILED is reachable from every non-terminal state.
var cycleTransitions = map[models.CycleState][]models.CycleState{
	models.CycleStateIdle:            {models.CycleStateEnsuringHistory, models.CycleStateScanning, models.CycleStateDone},
	models.CycleStateEnsuringHistory: {models.CycleStateProjecting},
	models.CycleStateProjecting:      {models.CycleStateAlerting, models.CycleStateDone},
	models.CycleStateAlerting:        {models.CycleStateProjecting, models.CycleStateDone},
	models.CycleStateScanning:        {models.CycleStateDone},
}

// cycleMachine tracks one cycle's state and the path it took.
type cycleMachine struct {
	state models.CycleState
	trace []models.CycleState
}

func newCycleMachine() *cycleMachine {
	return &cycleMachine{state: models.CycleStateIdle, trace: []models.CycleState{models.CycleStateIdle}}
}

// advance moves to next, rejecting transitions the machine does not allow.
// Re-entering the current running state is a no-op. A rejected move leaves
// the state unchanged.
func (c *cycleMachine) advance(next models.CycleState) error {
	if next == c.state && !c.terminal() {
		return nil
	}
	if next == models.CycleStateFailed && !c.terminal() {
		c.set(next)
		return nil
	}
	for _, allowed := range cycleTransitions[c.state] {
		if allowed == next {
			c.set(next)
			return nil
		}
	}
	return fmt.Errorf("illegal cycle transition %s -> %s", c.state, next)
}

func (c *cycleMachine) terminal() bool {
	return c.state == models.CycleStateDone || c.state == models.CycleStateFailed
}

func (c *cycleMachine) set(next models.CycleState) {
	if c.state == next {
		return
	}
	c.state = next
	c.trace = append(c.trace, next)
}
