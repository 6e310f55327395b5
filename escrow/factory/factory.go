// Package factory deploys escrow instances at addresses computable in
// advance from the swap immutables, tracks per-swap deployment and
// hosts the access-control registry.
package factory

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/crosslock/CrossChain-Escrow/accesscontrol"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/escrow/partialfill"
	"github.com/crosslock/CrossChain-Escrow/log"
)

// Role implementation fingerprints. Escrow addresses commit to the
// implementation template backing them, so the two roles of one swap
// never collide on one ledger.
var (
	SrcImplFingerprint = common.Keccak256Hash([]byte("crosslock/escrow-src/v1"))
	DstImplFingerprint = common.Keccak256Hash([]byte("crosslock/escrow-dst/v1"))
)

// Config is the factory policy fixed at deployment.
type Config struct {
	Address common.Address
	Owner   common.Address

	// RescueDelay gates the emergency rescue of stranded assets,
	// orthogonal to the swap schedule.
	RescueDelay uint64
	// CancelSkewTolerance bounds how far the destination cancellation
	// may trail the source cancellation (clock skew allowance between
	// the two ledgers). Policy choice, not structural: configure it.
	CancelSkewTolerance uint64
}

// Factory is the per-ledger deployment registry. The duplicate-swap
// map and the whitelist are its only cross-request state; a single
// mutex serializes their mutation.
type Factory struct {
	cfg       Config
	host      escrow.Host
	whitelist *accesscontrol.Whitelist
	verifier  escrow.AccessVerifier
	fills     *partialfill.Validator

	mu       sync.RWMutex
	paused   bool
	deployed map[common.Hash]*escrow.Escrow
}

// New creates a factory on the given host ledger. The verifier is the
// composed admission check used for public transitions and destination
// escrow creation; the whitelist is the mutable membership behind it.
func New(cfg Config, host escrow.Host, whitelist *accesscontrol.Whitelist, verifier escrow.AccessVerifier) *Factory {
	return &Factory{
		cfg:       cfg,
		host:      host,
		whitelist: whitelist,
		verifier:  verifier,
		fills:     partialfill.NewValidator(),
		deployed:  make(map[common.Hash]*escrow.Escrow),
	}
}

// Address returns the factory address.
func (f *Factory) Address() common.Address { return f.cfg.Address }

// Owner returns the administrator address.
func (f *Factory) Owner() common.Address { return f.cfg.Owner }

// RescueDelay returns the configured rescue delay in seconds.
func (f *Factory) RescueDelay() uint64 { return f.cfg.RescueDelay }

// CancelSkewTolerance returns the configured skew allowance in seconds.
func (f *Factory) CancelSkewTolerance() uint64 { return f.cfg.CancelSkewTolerance }

// Whitelist returns the membership registry.
func (f *Factory) Whitelist() *accesscontrol.Whitelist { return f.whitelist }

// PredictAddress computes the escrow address of the given immutables
// hash and role before creation. It is a pure function of the factory
// address, the role template fingerprint and the salt.
func (f *Factory) PredictAddress(immutablesHash common.Hash, role escrow.Role) common.Address {
	return escrow.DerivedAddress(f.cfg.Address, implFingerprint(role), immutablesHash)
}

func implFingerprint(role escrow.Role) common.Hash {
	if role == escrow.RoleSrc {
		return SrcImplFingerprint
	}
	return DstImplFingerprint
}

// CreateSrcEscrow deploys the source side escrow. The maker must have
// sent the safety deposit (and the locked amount, for a native asset
// swap) to the predicted address ahead of this call; token amounts must
// already sit at the predicted address too.
func (f *Factory) CreateSrcEscrow(caller common.Address, im *escrow.Immutables) (*escrow.Escrow, error) {
	return f.createSrcEscrow(caller, im, nil)
}

// CreateSrcEscrowWithFill deploys the source side escrow of one part
// of a partially filled order, validating the part's secret slot
// against the order's Merkle commitment first.
func (f *Factory) CreateSrcEscrowWithFill(caller common.Address, im *escrow.Immutables, fill *partialfill.Fill) (*escrow.Escrow, error) {
	return f.createSrcEscrow(caller, im, fill)
}

func (f *Factory) createSrcEscrow(caller common.Address, im *escrow.Immutables, fill *partialfill.Fill) (*escrow.Escrow, error) {
	if err := im.Validate(); err != nil {
		return nil, err
	}
	if fill != nil && fill.SecretHash != im.Hashlock {
		return nil, fmt.Errorf("%w: fill hashlock differs from immutables", escrow.ErrInvalidPartialFill)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.paused {
		return nil, escrow.ErrFactoryPaused
	}

	salt := im.Hash()
	if _, ok := f.deployed[salt]; ok {
		return nil, fmt.Errorf("%w: %v", escrow.ErrDuplicateSwap, salt)
	}

	predicted := escrow.DerivedAddress(f.cfg.Address, SrcImplFingerprint, salt)
	requiredNative := new(big.Int).Set(im.SafetyDeposit)
	if im.Asset == escrow.NativeAsset {
		requiredNative.Add(requiredNative, im.Amount)
	} else if f.host.BalanceOf(im.Asset, predicted).Cmp(im.Amount) < 0 {
		return nil, fmt.Errorf("%w: %v lacks locked amount %v", escrow.ErrInsufficientFunding, predicted, im.Amount)
	}
	if f.host.BalanceOf(escrow.NativeAsset, predicted).Cmp(requiredNative) < 0 {
		return nil, fmt.Errorf("%w: %v lacks safety deposit %v", escrow.ErrInsufficientFunding, predicted, requiredNative)
	}

	// last failing step: a fill slot is consumed only by a creation
	// that actually succeeds, so a creation rejected above (pause,
	// missing pre-funding) can be retried with the same slot.
	if fill != nil {
		if err := f.fills.ValidateFill(im.OrderHash, fill); err != nil {
			return nil, err
		}
	}

	now := f.host.Now()
	resolved := im.Clone()
	resolved.Timelocks = im.Timelocks.WithDeployedAt(now)

	esc := escrow.New(escrow.RoleSrc, f.cfg.Address, SrcImplFingerprint, salt,
		now, f.cfg.RescueDelay, f.verifier)
	f.deployed[salt] = esc

	f.host.Emit(escrow.Event{
		Type:       escrow.EventSrcEscrowCreated,
		Escrow:     esc.Address(),
		OrderHash:  im.OrderHash,
		Caller:     caller,
		Immutables: resolved,
		Time:       now,
	})
	log.Info("create src escrow", "escrow", esc.Address(), "orderHash", im.OrderHash,
		"maker", im.Maker, "taker", im.Taker, "amount", im.Amount, "deployedAt", now)
	return esc, nil
}

// CreateDstEscrow deploys the destination side escrow, funded from the
// caller's balance. The caller must pass the access verifier, and the
// destination cancellation time must not trail the source cancellation
// deadline by more than the configured skew tolerance.
func (f *Factory) CreateDstEscrow(caller common.Address, im *escrow.Immutables, srcCancellation uint64, auth []byte) (*escrow.Escrow, error) {
	if err := im.Validate(); err != nil {
		return nil, err
	}
	if err := f.verifier.Authorize(caller, escrow.ActionCreateDstEscrow, im.OrderHash, auth); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.paused {
		return nil, escrow.ErrFactoryPaused
	}

	salt := im.Hash()
	if _, ok := f.deployed[salt]; ok {
		return nil, fmt.Errorf("%w: %v", escrow.ErrDuplicateSwap, salt)
	}

	now := f.host.Now()
	anchored := im.Timelocks.WithDeployedAt(now)
	if dstCancel := anchored.Get(escrow.StageDstCancellation); dstCancel > srcCancellation+f.cfg.CancelSkewTolerance {
		return nil, fmt.Errorf("%w: dst cancellation %v exceeds src deadline %v by more than %v",
			escrow.ErrInvalidSchedule, dstCancel, srcCancellation, f.cfg.CancelSkewTolerance)
	}

	predicted := escrow.DerivedAddress(f.cfg.Address, DstImplFingerprint, salt)

	// check-then-act: verify the caller can cover the full funding
	// before moving anything.
	requiredNative := new(big.Int).Set(im.SafetyDeposit)
	if im.Asset == escrow.NativeAsset {
		requiredNative.Add(requiredNative, im.Amount)
	} else if f.host.BalanceOf(im.Asset, caller).Cmp(im.Amount) < 0 {
		return nil, fmt.Errorf("%w: caller lacks locked amount %v", escrow.ErrInsufficientFunding, im.Amount)
	}
	if f.host.BalanceOf(escrow.NativeAsset, caller).Cmp(requiredNative) < 0 {
		return nil, fmt.Errorf("%w: caller lacks safety deposit %v", escrow.ErrInsufficientFunding, requiredNative)
	}
	if err := f.host.Transfer(im.Asset, caller, predicted, im.Amount); err != nil {
		return nil, err
	}
	if im.SafetyDeposit.Sign() > 0 {
		if err := f.host.Transfer(escrow.NativeAsset, caller, predicted, im.SafetyDeposit); err != nil {
			return nil, err
		}
	}

	resolved := im.Clone()
	resolved.Timelocks = anchored

	esc := escrow.New(escrow.RoleDst, f.cfg.Address, DstImplFingerprint, salt,
		now, f.cfg.RescueDelay, f.verifier)
	f.deployed[salt] = esc

	f.host.Emit(escrow.Event{
		Type:       escrow.EventDstEscrowCreated,
		Escrow:     esc.Address(),
		OrderHash:  im.OrderHash,
		Caller:     caller,
		Immutables: resolved,
		Time:       now,
	})
	log.Info("create dst escrow", "escrow", esc.Address(), "orderHash", im.OrderHash,
		"taker", im.Taker, "amount", im.Amount, "deployedAt", now)
	return esc, nil
}

// GetEscrow looks up a deployed escrow by immutables hash.
func (f *Factory) GetEscrow(immutablesHash common.Hash) (*escrow.Escrow, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	esc, ok := f.deployed[immutablesHash]
	if !ok {
		return nil, fmt.Errorf("%w: %v", escrow.ErrEscrowNotFound, immutablesHash)
	}
	return esc, nil
}

// DeployedCount returns the number of escrows this factory created.
func (f *Factory) DeployedCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.deployed)
}

// Paused returns the pause flag.
func (f *Factory) Paused() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.paused
}

func (f *Factory) requireOwner(caller common.Address) error {
	if caller != f.cfg.Owner {
		return fmt.Errorf("%w: %v is not the factory owner", escrow.ErrUnauthorized, caller)
	}
	return nil
}

// Pause stops escrow creation. Owner only. Existing escrows keep
// operating: pausing must never trap in-flight swaps.
func (f *Factory) Pause(caller common.Address) error {
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	f.mu.Lock()
	f.paused = true
	f.mu.Unlock()
	log.Info("factory paused", "factory", f.cfg.Address)
	return nil
}

// Unpause resumes escrow creation. Owner only.
func (f *Factory) Unpause(caller common.Address) error {
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	f.mu.Lock()
	f.paused = false
	f.mu.Unlock()
	log.Info("factory unpaused", "factory", f.cfg.Address)
	return nil
}

// SetWhitelisted mutates the membership list. Owner only.
func (f *Factory) SetWhitelisted(caller, addr common.Address, ok bool) error {
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	f.whitelist.SetWhitelisted(addr, ok)
	return nil
}

// SetBypass toggles permissionless operation. Owner only.
func (f *Factory) SetBypass(caller common.Address, bypass bool) error {
	if err := f.requireOwner(caller); err != nil {
		return err
	}
	f.whitelist.SetBypass(bypass)
	return nil
}
