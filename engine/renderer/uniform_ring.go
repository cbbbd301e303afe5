package renderer

import (
	"context"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/shadertypes"
	"golang.org/x/sync/semaphore"
)

const (
	// UniformAlignment is the minimum dynamic offset alignment for uniform buffers
	// guaranteed by WebGPU's default limits.
	UniformAlignment = 256

	// MaxBuffersInFlight is the number of frames that may be recorded while earlier
	// frames are still on the GPU.
	MaxBuffersInFlight = 3
)

// AlignedSize rounds size up to the next multiple of align. An align of zero returns size unchanged.
//
// Parameters:
//   - size: the unaligned byte size
//   - align: the alignment in bytes
//
// Returns:
//   - uint64: the aligned size
func AlignedSize(size, align uint64) uint64 {
	if align == 0 {
		return size
	}
	return (size + align - 1) / align * align
}

// AlignedUniformsSize is the stride between uniform slots in the ring buffer.
var AlignedUniformsSize = AlignedSize(shadertypes.GPUUniformsSize, UniformAlignment)

// uniformRing is the implementation of the UniformRing interface.
type uniformRing struct {
	mu  *sync.Mutex
	sem *semaphore.Weighted

	slotSize uint64
	slots    int
	index    int
	inFlight int
}

// UniformRing hands out slots of a single uniform buffer so the CPU can write the next
// frame's uniforms while the GPU still reads earlier ones. Acquire blocks while every
// slot is in flight.
type UniformRing interface {
	// Acquire waits for a free slot, advances to it and returns its byte offset.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//
	// Returns:
	//   - uint64: the slot's offset into the uniform buffer
	//   - error: ctx.Err() when cancelled while waiting
	Acquire(ctx context.Context) (uint64, error)

	// Release frees the oldest acquired slot. Calls beyond the number of acquired slots do nothing.
	Release()

	// SlotSize returns the aligned size of one slot in bytes.
	//
	// Returns:
	//   - uint64: the slot size
	SlotSize() uint64

	// Slots returns the number of slots in the ring.
	//
	// Returns:
	//   - int: the slot count
	Slots() int

	// BufferSize returns the size the backing uniform buffer must have.
	//
	// Returns:
	//   - uint64: SlotSize × Slots
	BufferSize() uint64

	// InFlight returns the number of acquired, unreleased slots.
	//
	// Returns:
	//   - int: the in-flight count
	InFlight() int
}

var _ UniformRing = &uniformRing{}

// NewUniformRing creates a ring of slots slots, each holding size bytes rounded up to
// UniformAlignment. Non-positive slot counts fall back to MaxBuffersInFlight.
//
// Parameters:
//   - size: the unaligned size of one uniform block
//   - slots: the number of slots
//
// Returns:
//   - UniformRing: the ring
func NewUniformRing(size uint64, slots int) UniformRing {
	if slots <= 0 {
		slots = MaxBuffersInFlight
	}
	return &uniformRing{
		mu:       &sync.Mutex{},
		sem:      semaphore.NewWeighted(int64(slots)),
		slotSize: AlignedSize(size, UniformAlignment),
		slots:    slots,
	}
}

func (u *uniformRing) Acquire(ctx context.Context) (uint64, error) {
	if err := u.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.index = (u.index + 1) % u.slots
	u.inFlight++
	return u.slotSize * uint64(u.index), nil
}

func (u *uniformRing) Release() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inFlight == 0 {
		return
	}
	u.inFlight--
	u.sem.Release(1)
}

func (u *uniformRing) SlotSize() uint64 {
	return u.slotSize
}

func (u *uniformRing) Slots() int {
	return u.slots
}

func (u *uniformRing) BufferSize() uint64 {
	return u.slotSize * uint64(u.slots)
}

func (u *uniformRing) InFlight() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inFlight
}
