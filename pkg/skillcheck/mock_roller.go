package skillcheck

import (
	"errors"
	"sync"
)

// MockRoller is a dice.Roller that returns scripted values for testing.
// When the script runs out, the last value repeats.
type MockRoller struct {
	Values []int
	Err    error

	// Track calls for testing
	RollCalls []int

	mu sync.Mutex
}

// NewMockRoller creates a roller that returns values in order.
func NewMockRoller(values ...int) *MockRoller {
	return &MockRoller{Values: values}
}

// Roll returns the next scripted value.
func (m *MockRoller) Roll(size int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RollCalls = append(m.RollCalls, size)
	if m.Err != nil {
		return 0, m.Err
	}
	if len(m.Values) == 0 {
		return 0, errors.New("mock roller has no values")
	}

	idx := len(m.RollCalls) - 1
	if idx >= len(m.Values) {
		idx = len(m.Values) - 1
	}
	return m.Values[idx], nil
}

// RollN returns count scripted values.
func (m *MockRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		v, err := m.Roll(size)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Calls returns the number of rolls made so far.
func (m *MockRoller) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RollCalls)
}
