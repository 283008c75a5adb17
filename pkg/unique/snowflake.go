package unique

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/huynhanx03/servicequeue/pkg/timer"
)

// ID layout: 41 bits of milliseconds since Epoch, 10 bits node, 12 bits step.
const (
	NodeBits = 10
	StepBits = 12

	nodeMax   = -1 ^ (-1 << NodeBits)
	stepMax   = -1 ^ (-1 << StepBits)
	timeShift = NodeBits + StepBits
	nodeShift = StepBits
)

// Epoch is 2025-01-01T00:00:00Z in Unix milliseconds.
const Epoch int64 = 1735689600000

// ErrNodeRange is returned for a node id outside [0, 1023].
var ErrNodeRange = errors.New("unique: node id out of range")

// Snowflake generates time-ordered unique int64 IDs for one node.
type Snowflake struct {
	mu    sync.Mutex
	last  int64
	node  int64
	step  int64
	clock timer.Clock
}

// NewSnowflake creates a generator for node. A nil clock uses timer.System.
func NewSnowflake(node int64, clock timer.Clock) (*Snowflake, error) {
	if node < 0 || node > nodeMax {
		return nil, errors.Wrapf(ErrNodeRange, "%d", node)
	}
	if clock == nil {
		clock = timer.System
	}
	return &Snowflake{node: node, clock: clock}, nil
}

// Generate returns the next ID. IDs from one Snowflake strictly increase.
//
// When the clock goes backwards or the step space of a millisecond is
// exhausted, the generator borrows the next millisecond instead of waiting.
func (n *Snowflake) Generate() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.clock.Now().UnixMilli() - Epoch
	if now < n.last {
		now = n.last
	}

	if now == n.last {
		n.step = (n.step + 1) & stepMax
		if n.step == 0 {
			now++
		}
	} else {
		n.step = 0
	}
	n.last = now

	return now<<timeShift | n.node<<nodeShift | n.step
}

// Node extracts the node id from an ID.
func Node(id int64) int64 { return id >> nodeShift & nodeMax }

// Millis extracts the Unix millisecond timestamp from an ID.
func Millis(id int64) int64 { return id>>timeShift + Epoch }
