// Package journal retains a bounded window of per-tick keyframes so a host
// can rewind the match for rollback networking. Keyframes are plain value
// snapshots; restoring one never aliases live engine state.
package journal

import (
	"sync"

	"fightstate/runtime/internal/sim"
)

// DefaultCapacity holds two seconds of keyframes at 60 ticks per second.
const DefaultCapacity = 120

// Journal is a fixed-capacity ring of keyframes ordered by sequence.
type Journal struct {
	mu       sync.Mutex
	frames   []sim.Keyframe
	head     int
	count    int
	nextSeq  uint64
	capacity int
}

// New constructs a journal with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{
		frames:   make([]sim.Keyframe, capacity),
		nextSeq:  1,
		capacity: capacity,
	}
}

// Record stores a keyframe, assigning the next sequence number and evicting
// the oldest entry when the ring is full.
func (j *Journal) Record(frame sim.Keyframe) sim.KeyframeRecordResult {
	if j == nil {
		return sim.KeyframeRecordResult{}
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	frame.Sequence = j.nextSeq
	j.nextSeq++

	evicted := 0
	if j.count == j.capacity {
		j.head = (j.head + 1) % j.capacity
		j.count--
		evicted = 1
	}
	j.frames[(j.head+j.count)%j.capacity] = frame
	j.count++

	oldest := j.frames[j.head]
	newest := j.frames[(j.head+j.count-1)%j.capacity]
	return sim.KeyframeRecordResult{
		Sequence:      frame.Sequence,
		Evicted:       evicted,
		OldestTick:    oldest.Tick,
		NewestTick:    newest.Tick,
		JournalLength: j.count,
	}
}

// BySequence returns the keyframe with the given sequence number if it is
// still inside the retained window.
func (j *Journal) BySequence(sequence uint64) (sim.Keyframe, bool) {
	if j == nil {
		return sim.Keyframe{}, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.count == 0 {
		return sim.Keyframe{}, false
	}
	oldest := j.frames[j.head].Sequence
	if sequence < oldest || sequence >= oldest+uint64(j.count) {
		return sim.Keyframe{}, false
	}
	frame := j.frames[(j.head+int(sequence-oldest))%j.capacity]
	return cloneKeyframe(frame), true
}

// Latest returns the most recently recorded keyframe.
func (j *Journal) Latest() (sim.Keyframe, bool) {
	if j == nil {
		return sim.Keyframe{}, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.count == 0 {
		return sim.Keyframe{}, false
	}
	return cloneKeyframe(j.frames[(j.head+j.count-1)%j.capacity]), true
}

// Window reports the retained length and the oldest and newest sequence
// numbers.
func (j *Journal) Window() (int, uint64, uint64) {
	if j == nil {
		return 0, 0, 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.count == 0 {
		return 0, 0, 0
	}
	oldest := j.frames[j.head].Sequence
	newest := j.frames[(j.head+j.count-1)%j.capacity].Sequence
	return j.count, oldest, newest
}

func cloneKeyframe(frame sim.Keyframe) sim.Keyframe {
	cloned := frame
	if len(frame.Combatants) > 0 {
		cloned.Combatants = append([]sim.CombatantView(nil), frame.Combatants...)
	}
	return cloned
}
