package consumers

import (
	"sync"

	"github.com/segmentio/kafka-go"
)

type inflight struct {
	msg  kafka.Message
	done bool
}

// offsetTracker keeps the fetched but uncommitted messages of each partition in fetch order
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[int][]*inflight
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[int][]*inflight)}
}

func (t *offsetTracker) add(msg kafka.Message) *inflight {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := &inflight{msg: msg}
	t.partitions[msg.Partition] = append(t.partitions[msg.Partition], entry)
	return entry
}

// complete marks entry done and pops the finished head of its partition.
// It returns the last popped message, which is the one to commit.
func (t *offsetTracker) complete(entry *inflight) (kafka.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry.done = true
	queue := t.partitions[entry.msg.Partition]

	var last *inflight
	for len(queue) > 0 && queue[0].done {
		last = queue[0]
		queue = queue[1:]
	}
	t.partitions[entry.msg.Partition] = queue

	if last == nil {
		return kafka.Message{}, false
	}
	return last.msg, true
}
