package escrow

import (
	"encoding/binary"
	"fmt"
)

// Stage identifies one of the seven relative timelock offsets.
type Stage uint8

// timelock stages
const (
	StageSrcWithdrawal Stage = iota
	StageSrcPublicWithdrawal
	StageSrcCancellation
	StageSrcPublicCancellation
	StageDstWithdrawal
	StageDstPublicWithdrawal
	StageDstCancellation

	stageCount
)

var stageNames = [stageCount]string{
	"SrcWithdrawal",
	"SrcPublicWithdrawal",
	"SrcCancellation",
	"SrcPublicCancellation",
	"DstWithdrawal",
	"DstPublicWithdrawal",
	"DstCancellation",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if s < stageCount {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Timelocks holds the deployment anchor and the seven relative offsets
// (in seconds) gating the escrow transitions. The zero anchor means the
// schedule is not yet bound to a deployment.
type Timelocks struct {
	DeployedAt uint32

	SrcWithdrawal         uint32
	SrcPublicWithdrawal   uint32
	SrcCancellation       uint32
	SrcPublicCancellation uint32
	DstWithdrawal         uint32
	DstPublicWithdrawal   uint32
	DstCancellation       uint32
}

// offsets returns the seven relative offsets in stage order.
func (t *Timelocks) offsets() [stageCount]uint32 {
	return [stageCount]uint32{
		t.SrcWithdrawal,
		t.SrcPublicWithdrawal,
		t.SrcCancellation,
		t.SrcPublicCancellation,
		t.DstWithdrawal,
		t.DstPublicWithdrawal,
		t.DstCancellation,
	}
}

// Validate ensures the per-side window ordering holds:
// withdrawal < public withdrawal < cancellation (< public cancellation
// on the source side).
func (t *Timelocks) Validate() error {
	if !(t.SrcWithdrawal < t.SrcPublicWithdrawal &&
		t.SrcPublicWithdrawal < t.SrcCancellation &&
		t.SrcCancellation < t.SrcPublicCancellation) {
		return fmt.Errorf("%w: source windows disordered (withdrawal %v, public %v, cancel %v, public cancel %v)",
			ErrInvalidSchedule, t.SrcWithdrawal, t.SrcPublicWithdrawal, t.SrcCancellation, t.SrcPublicCancellation)
	}
	if !(t.DstWithdrawal < t.DstPublicWithdrawal &&
		t.DstPublicWithdrawal < t.DstCancellation) {
		return fmt.Errorf("%w: destination windows disordered (withdrawal %v, public %v, cancel %v)",
			ErrInvalidSchedule, t.DstWithdrawal, t.DstPublicWithdrawal, t.DstCancellation)
	}
	return nil
}

// WithDeployedAt returns a copy of the schedule anchored at ts.
// The anchor is set exactly once, at escrow creation.
func (t Timelocks) WithDeployedAt(ts uint64) Timelocks {
	t.DeployedAt = uint32(ts)
	return t
}

// Get resolves the absolute unlock time of the given stage. An unknown
// stage resolves to the anchor itself.
func (t *Timelocks) Get(stage Stage) uint64 {
	if stage >= stageCount {
		return uint64(t.DeployedAt)
	}
	return uint64(t.DeployedAt) + uint64(t.offsets()[stage])
}

// RescueStart resolves the absolute start of the rescue window.
func (t *Timelocks) RescueStart(rescueDelay uint64) uint64 {
	return uint64(t.DeployedAt) + rescueDelay
}

// Pack encodes the schedule into one 256-bit word with the anchor in
// the high 32 bits and the offsets at 32-bit lanes below it, the first
// stage in the lowest lane.
func (t *Timelocks) Pack() (word [32]byte) {
	binary.BigEndian.PutUint32(word[0:4], t.DeployedAt)
	offsets := t.offsets()
	for i, offset := range offsets {
		lane := 32 - 4*(i+1) // lane 0 occupies the lowest 4 bytes
		binary.BigEndian.PutUint32(word[lane:lane+4], offset)
	}
	return word
}

// UnpackTimelocks decodes a schedule packed with Pack.
func UnpackTimelocks(word [32]byte) Timelocks {
	get := func(i int) uint32 {
		lane := 32 - 4*(i+1)
		return binary.BigEndian.Uint32(word[lane : lane+4])
	}
	return Timelocks{
		DeployedAt:            binary.BigEndian.Uint32(word[0:4]),
		SrcWithdrawal:         get(0),
		SrcPublicWithdrawal:   get(1),
		SrcCancellation:       get(2),
		SrcPublicCancellation: get(3),
		DstWithdrawal:         get(4),
		DstPublicWithdrawal:   get(5),
		DstCancellation:       get(6),
	}
}
