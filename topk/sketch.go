// Package topk tracks the most frequent keys over a sliding window of ticks.
package topk

import (
	"sync"

	"github.com/keilerkonzept/topk/sliding"
)

// SketchParams configures a TopKSketch.
type SketchParams struct {
	K          int // number of keys reported
	WindowSize int // window length, in ticks
	Width      int
	Depth      int
	// TickSize is the number of observations per tick.
	TickSize uint64
	// HotSharePercent marks a key hot when its count exceeds this share of
	// the window capacity (WindowSize * TickSize).
	HotSharePercent uint64
}

// Entry is a key and its count in the current window.
type Entry struct {
	Key   string
	Count uint32
}

type TopKSketch struct {
	mu        sync.Mutex
	sketch    *sliding.Sketch
	tickSize  uint64
	tickReq   uint64 // observations since last tick
	tickCount uint64
	threshold uint32
}

// New creates a TopKSketch. Zero TickSize defaults to 1000.
func New(params SketchParams) *TopKSketch {
	if params.TickSize == 0 {
		params.TickSize = 1000
	}
	if params.Width <= 0 {
		params.Width = 1024
	}
	if params.Depth <= 0 {
		params.Depth = 3
	}

	instance := sliding.New(params.K, params.WindowSize,
		sliding.WithWidth(params.Width), sliding.WithDepth(params.Depth))

	capacity := uint64(params.WindowSize) * params.TickSize
	return &TopKSketch{
		sketch:    instance,
		tickSize:  params.TickSize,
		threshold: uint32(capacity * params.HotSharePercent / 100),
	}
}

// Observe counts key. When the observation completes a tick it returns the keys
// above the hot share, most frequent first, and advances the window.
func (cs *TopKSketch) Observe(key string) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.sketch.Incr(key)
	cs.tickReq++
	if cs.tickReq < cs.tickSize {
		return nil
	}

	var hot []string
	for _, item := range cs.sketch.SortedSlice() {
		if item.Count <= cs.threshold {
			break
		}
		hot = append(hot, item.Item)
	}

	cs.sketch.Tick()
	cs.tickCount++
	cs.tickReq = 0
	return hot
}

// Top returns the current top keys, most frequent first.
func (cs *TopKSketch) Top() []Entry {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	items := cs.sketch.SortedSlice()
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.Count == 0 {
			continue
		}
		out = append(out, Entry{Key: item.Item, Count: item.Count})
	}
	return out
}

// Ticks returns how many ticks have elapsed.
func (cs *TopKSketch) Ticks() uint64 {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.tickCount
}

// SizeBytes reports the sketch memory footprint.
func (cs *TopKSketch) SizeBytes() int {
	return cs.sketch.SizeBytes()
}
