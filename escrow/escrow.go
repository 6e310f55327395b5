package escrow

import (
	"bytes"
	"fmt"
	"math/big"
	"sync"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/log"
)

// Role fixes which side of the swap an escrow instance serves.
type Role uint8

// escrow roles
const (
	// RoleSrc escrows are funded by the maker on the source ledger.
	RoleSrc Role = iota
	// RoleDst escrows are funded by the taker on the destination ledger.
	RoleDst
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleSrc:
		return "src"
	case RoleDst:
		return "dst"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Status is the escrow lifecycle state. Funded is the initial state;
// Claimed and Cancelled are terminal.
type Status uint8

// escrow statuses
const (
	StatusFunded Status = iota
	StatusClaimed
	StatusCancelled
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusFunded:
		return "funded"
	case StatusClaimed:
		return "claimed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// roleSpec carries the role specific stage table. It replaces the
// specialized subclass per role of the original design: the constants
// are supplied at construction, not overridden.
type roleSpec struct {
	withdrawal         Stage
	publicWithdrawal   Stage
	cancellation       Stage
	publicCancellation Stage
	hasPublicCancel    bool
}

var roleSpecs = map[Role]roleSpec{
	RoleSrc: {
		withdrawal:         StageSrcWithdrawal,
		publicWithdrawal:   StageSrcPublicWithdrawal,
		cancellation:       StageSrcCancellation,
		publicCancellation: StageSrcPublicCancellation,
		hasPublicCancel:    true,
	},
	RoleDst: {
		withdrawal:       StageDstWithdrawal,
		publicWithdrawal: StageDstPublicWithdrawal,
		cancellation:     StageDstCancellation,
	},
}

// DerivedAddress computes the deterministic escrow address from the
// owning factory, the role implementation fingerprint and the
// immutables content hash (the salt). It depends on no mutable state,
// so it can be computed off-chain before creation.
func DerivedAddress(factory common.Address, implFingerprint, immutablesHash common.Hash) common.Address {
	digest := common.Keccak256(
		[]byte{0xff},
		factory.Bytes(),
		immutablesHash.Bytes(),
		implFingerprint.Bytes(),
	)
	return common.BytesToAddress(digest[12:])
}

// Escrow is the funded state machine of one swap leg. It holds the
// locked amount plus the safety deposit at its derived address until
// exactly one terminal transition fires.
type Escrow struct {
	mu sync.Mutex

	role            Role
	spec            roleSpec
	address         common.Address
	factory         common.Address
	implFingerprint common.Hash
	immutablesHash  common.Hash
	deployedAt      uint64
	rescueDelay     uint64
	verifier        AccessVerifier

	status Status
	secret []byte
}

// New constructs an escrow instance. The owning factory address is an
// explicit argument so a proxied deployment cannot bake in the wrong
// owner identity.
func New(role Role, factory common.Address, implFingerprint, immutablesHash common.Hash,
	deployedAt, rescueDelay uint64, verifier AccessVerifier) *Escrow {
	return &Escrow{
		role:            role,
		spec:            roleSpecs[role],
		address:         DerivedAddress(factory, implFingerprint, immutablesHash),
		factory:         factory,
		implFingerprint: implFingerprint,
		immutablesHash:  immutablesHash,
		deployedAt:      deployedAt,
		rescueDelay:     rescueDelay,
		verifier:        verifier,
	}
}

// Role returns the escrow role.
func (e *Escrow) Role() Role { return e.role }

// Address returns the derived escrow address.
func (e *Escrow) Address() common.Address { return e.address }

// Factory returns the owning factory address.
func (e *Escrow) Factory() common.Address { return e.factory }

// ImmutablesHash returns the content hash the escrow was created for.
func (e *Escrow) ImmutablesHash() common.Hash { return e.immutablesHash }

// DeployedAt returns the creation timestamp (the timelock anchor).
func (e *Escrow) DeployedAt() uint64 { return e.deployedAt }

// Status returns the current lifecycle state.
func (e *Escrow) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// RevealedSecret returns the secret supplied by a successful claim,
// or nil if the escrow was not claimed.
func (e *Escrow) RevealedSecret() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return common.CopyBytes(e.secret)
}

// verifyImmutables re-derives the escrow address from the supplied
// immutables and fails closed on any mismatch. This is the core
// defense against a caller supplying parameters that do not match what
// was actually funded.
func (e *Escrow) verifyImmutables(im *Immutables) error {
	derived := DerivedAddress(e.factory, e.implFingerprint, im.Hash())
	if derived != e.address {
		return fmt.Errorf("%w: derived address %v does not match escrow %v",
			ErrInvalidParameters, derived, e.address)
	}
	if uint64(im.Timelocks.DeployedAt) != e.deployedAt {
		return fmt.Errorf("%w: anchor %v does not match deployment time %v",
			ErrInvalidParameters, im.Timelocks.DeployedAt, e.deployedAt)
	}
	return nil
}

// executor is the role designated claimer and rescuer: the taker claims
// on the source ledger, the maker claims on the destination ledger.
func (e *Escrow) executor(im *Immutables) common.Address {
	if e.role == RoleSrc {
		return im.Taker
	}
	return im.Maker
}

// depositor funded the escrow and receives funds back on cancellation.
func (e *Escrow) depositor(im *Immutables) common.Address {
	if e.role == RoleSrc {
		return im.Maker
	}
	return im.Taker
}

// Claim releases the locked amount to the role beneficiary during the
// private withdrawal window. The caller must be the role executor and
// must supply the hashlock preimage.
func (e *Escrow) Claim(host Host, caller common.Address, secret [SecretLength]byte, im *Immutables) error {
	return e.claim(host, caller, secret, nil, im, false)
}

// PublicClaim releases the locked amount during the public withdrawal
// window. Any caller admitted by the access verifier may execute it and
// earns the safety deposit.
func (e *Escrow) PublicClaim(host Host, caller common.Address, secret [SecretLength]byte, auth []byte, im *Immutables) error {
	return e.claim(host, caller, secret, auth, im, true)
}

func (e *Escrow) claim(host Host, caller common.Address, secret [SecretLength]byte, auth []byte, im *Immutables, public bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.verifyImmutables(im); err != nil {
		return err
	}
	if e.status != StatusFunded {
		return fmt.Errorf("%w: escrow is %v", ErrAlreadyResolved, e.status)
	}

	now := host.Now()
	start := im.Timelocks.Get(e.spec.withdrawal)
	if public {
		start = im.Timelocks.Get(e.spec.publicWithdrawal)
	}
	end := im.Timelocks.Get(e.spec.cancellation)
	if now < start || now >= end {
		return fmt.Errorf("%w: claim window is [%v, %v), now %v", ErrInvalidTime, start, end, now)
	}

	if public {
		if err := e.verifier.Authorize(caller, ActionPublicClaim, im.OrderHash, auth); err != nil {
			return err
		}
	} else if caller != e.executor(im) {
		return fmt.Errorf("%w: private claim restricted to %v", ErrUnauthorized, e.executor(im))
	}

	if HashSecret(secret) != im.Hashlock {
		return ErrInvalidSecret
	}

	if err := e.payOut(host, im, e.executor(im), caller); err != nil {
		return err
	}

	e.status = StatusClaimed
	e.secret = make([]byte, SecretLength)
	copy(e.secret, secret[:])

	host.Emit(Event{
		Type:      EventEscrowClaimed,
		Escrow:    e.address,
		OrderHash: im.OrderHash,
		Caller:    caller,
		Secret:    common.CopyBytes(e.secret),
		Time:      now,
	})
	log.Info("escrow claimed", "escrow", e.address, "role", e.role, "orderHash", im.OrderHash, "caller", caller, "public", public)
	return nil
}

// Cancel returns the locked amount and the safety deposit to the
// depositor once the cancellation window opened.
func (e *Escrow) Cancel(host Host, caller common.Address, im *Immutables) error {
	return e.cancel(host, caller, nil, im, false)
}

// PublicCancel lets any verifier admitted caller cancel a source escrow
// on the depositor's behalf once the public cancellation window opened,
// earning the safety deposit. Destination escrows have no public
// cancellation window.
func (e *Escrow) PublicCancel(host Host, caller common.Address, auth []byte, im *Immutables) error {
	return e.cancel(host, caller, auth, im, true)
}

func (e *Escrow) cancel(host Host, caller common.Address, auth []byte, im *Immutables, public bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.verifyImmutables(im); err != nil {
		return err
	}
	if e.status != StatusFunded {
		return fmt.Errorf("%w: escrow is %v", ErrAlreadyResolved, e.status)
	}

	if public && !e.spec.hasPublicCancel {
		return fmt.Errorf("%w: %v escrow has no public cancellation window", ErrInvalidTime, e.role)
	}
	now := host.Now()
	start := im.Timelocks.Get(e.spec.cancellation)
	if public {
		start = im.Timelocks.Get(e.spec.publicCancellation)
	}
	if now < start {
		return fmt.Errorf("%w: cancellation opens at %v, now %v", ErrInvalidTime, start, now)
	}

	depositor := e.depositor(im)
	depositTo := depositor
	if public {
		if err := e.verifier.Authorize(caller, ActionPublicCancel, im.OrderHash, auth); err != nil {
			return err
		}
		depositTo = caller
	} else if caller != depositor {
		return fmt.Errorf("%w: private cancellation restricted to %v", ErrUnauthorized, depositor)
	}

	if err := e.payOut(host, im, depositor, depositTo); err != nil {
		return err
	}

	e.status = StatusCancelled
	host.Emit(Event{
		Type:      EventEscrowCancelled,
		Escrow:    e.address,
		OrderHash: im.OrderHash,
		Caller:    caller,
		Time:      now,
	})
	log.Info("escrow cancelled", "escrow", e.address, "role", e.role, "orderHash", im.OrderHash, "caller", caller, "public", public)
	return nil
}

// Rescue recovers balance held by the escrow that is not accounted for
// by the swap's own bookkeeping, once the rescue delay elapsed. It is
// orthogonal to the swap outcome and remains available after claim or
// cancellation.
func (e *Escrow) Rescue(host Host, caller common.Address, asset common.Address, amount *big.Int, im *Immutables) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.verifyImmutables(im); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive rescue amount", ErrInvalidParameters)
	}

	now := host.Now()
	if start := im.Timelocks.RescueStart(e.rescueDelay); now < start {
		return fmt.Errorf("%w: rescue opens at %v, now %v", ErrInvalidTime, start, now)
	}
	if caller != e.executor(im) {
		return fmt.Errorf("%w: rescue restricted to %v", ErrUnauthorized, e.executor(im))
	}

	rescuable := new(big.Int).Set(host.BalanceOf(asset, e.address))
	rescuable.Sub(rescuable, e.accountedBalance(asset, im))
	if rescuable.Cmp(amount) < 0 {
		return fmt.Errorf("%w: rescuable balance %v below requested %v", ErrInsufficientFunding, rescuable, amount)
	}

	if err := host.Transfer(asset, e.address, caller, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	host.Emit(Event{
		Type:      EventFundsRescued,
		Escrow:    e.address,
		OrderHash: im.OrderHash,
		Caller:    caller,
		Asset:     asset,
		Amount:    new(big.Int).Set(amount),
		Time:      now,
	})
	log.Info("escrow funds rescued", "escrow", e.address, "asset", asset, "amount", amount, "caller", caller)
	return nil
}

// accountedBalance is the portion of the escrow balance in the given
// asset that belongs to the swap while it is unresolved. Terminal
// escrows account for nothing, their whole residue is rescuable.
func (e *Escrow) accountedBalance(asset common.Address, im *Immutables) *big.Int {
	accounted := new(big.Int)
	if e.status != StatusFunded {
		return accounted
	}
	if asset == im.Asset {
		accounted.Add(accounted, im.Amount)
	}
	if asset == NativeAsset {
		accounted.Add(accounted, im.SafetyDeposit)
	}
	return accounted
}

// payOut moves the locked amount to assetTo and the safety deposit to
// depositTo. It verifies the escrow holds the full payout before moving
// anything so a failing transfer cannot leave partially moved funds.
func (e *Escrow) payOut(host Host, im *Immutables, assetTo, depositTo common.Address) error {
	requiredNative := new(big.Int).Set(im.SafetyDeposit)
	if im.Asset == NativeAsset {
		requiredNative.Add(requiredNative, im.Amount)
	} else if host.BalanceOf(im.Asset, e.address).Cmp(im.Amount) < 0 {
		return fmt.Errorf("%w: escrow asset balance below locked amount", ErrTransferFailed)
	}
	if host.BalanceOf(NativeAsset, e.address).Cmp(requiredNative) < 0 {
		return fmt.Errorf("%w: escrow native balance below required payout", ErrTransferFailed)
	}

	if err := host.Transfer(im.Asset, e.address, assetTo, im.Amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if im.SafetyDeposit.Sign() > 0 {
		if err := host.Transfer(NativeAsset, e.address, depositTo, im.SafetyDeposit); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}
	return nil
}

// SecretMatches reports whether the given preimage opens the hashlock.
func SecretMatches(secret []byte, hashlock common.Hash) bool {
	if len(secret) != SecretLength {
		return false
	}
	return bytes.Equal(common.Keccak256(secret), hashlock.Bytes())
}
