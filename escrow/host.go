package escrow

import (
	"math/big"

	"github.com/crosslock/CrossChain-Escrow/common"
)

// Host is the ledger the escrow engine runs on. Transitions are
// serialized by the host; Transfer is all-or-nothing and fails with an
// error wrapping ErrTransferFailed.
type Host interface {
	// Now returns the current ledger time as a unix timestamp.
	Now() uint64
	// BalanceOf returns the balance of account in the given asset book.
	BalanceOf(asset, account common.Address) *big.Int
	// Transfer moves amount of asset from one account to another.
	Transfer(asset, from, to common.Address, amount *big.Int) error
	// Emit appends an event to the ledger journal.
	Emit(ev Event)
}

// AccessVerifier gates the public (post-private-window) transitions and
// destination escrow creation. Implementations must return an error
// wrapping ErrUnauthorized when the caller fails every admission path.
type AccessVerifier interface {
	Authorize(caller common.Address, action string, orderHash common.Hash, auth []byte) error
}

// access controlled action names, bound into signed authorizations
const (
	ActionPublicClaim     = "publicClaim"
	ActionPublicCancel    = "publicCancel"
	ActionCreateDstEscrow = "createDstEscrow"
)

// EventType tags ledger journal entries.
type EventType string

// event types observed by the off-chain coordinator
const (
	EventSrcEscrowCreated EventType = "SrcEscrowCreated"
	EventDstEscrowCreated EventType = "DstEscrowCreated"
	EventEscrowClaimed    EventType = "EscrowClaimed"
	EventEscrowCancelled  EventType = "EscrowCancelled"
	EventFundsRescued     EventType = "FundsRescued"
)

// Event is one ledger journal entry. Creation events carry the fully
// resolved immutables because the timelock anchor is only known at
// creation time; claim events carry the revealed secret, which is the
// cross-chain synchronization primitive.
type Event struct {
	Type       EventType
	Escrow     common.Address
	OrderHash  common.Hash
	Caller     common.Address
	Immutables *Immutables // creation events, resolved anchor included
	Secret     []byte      // claim events only
	Asset      common.Address
	Amount     *big.Int
	Time       uint64
}
