// Package ledger provides the in-process ledger the escrow engine runs
// on: balance books for the native asset and tokens, a block clock, an
// all-or-nothing transfer primitive and an append-only event journal
// observed by the off-chain coordinator.
package ledger

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/log"
)

// State is one ledger. A single mutex serializes every mutation,
// mirroring consensus ordering: no transition observes another half
// applied.
type State struct {
	mu sync.RWMutex

	chainID  *big.Int
	now      uint64
	realtime bool

	// asset -> account -> balance; NativeAsset keys the native book
	balances map[common.Address]map[common.Address]*big.Int
	events   []escrow.Event
}

var _ escrow.Host = (*State)(nil)

// NewState creates a ledger with a manual clock starting at genesis.
// Tests drive the clock with AdvanceTime/SetTime.
func NewState(chainID *big.Int, genesis uint64) *State {
	return &State{
		chainID:  chainID,
		now:      genesis,
		balances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

// NewRealtimeState creates a ledger whose clock follows wall time,
// used by the long-running node.
func NewRealtimeState(chainID *big.Int) *State {
	s := NewState(chainID, uint64(time.Now().Unix()))
	s.realtime = true
	return s
}

// ChainID returns the ledger chain id.
func (s *State) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// Now implements escrow.Host.
func (s *State) Now() uint64 {
	if s.realtime {
		return uint64(time.Now().Unix())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

// AdvanceTime moves the manual clock forward by d seconds.
func (s *State) AdvanceTime(d uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += d
}

// SetTime sets the manual clock. Ledger time never moves backwards;
// earlier timestamps are ignored.
func (s *State) SetTime(ts uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts < s.now {
		log.Warn("ignore backward clock set", "have", s.now, "requested", ts)
		return
	}
	s.now = ts
}

func (s *State) book(asset common.Address) map[common.Address]*big.Int {
	b, ok := s.balances[asset]
	if !ok {
		b = make(map[common.Address]*big.Int)
		s.balances[asset] = b
	}
	return b
}

// Mint credits an account, used for genesis funding and tests.
func (s *State) Mint(asset, account common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	book := s.book(asset)
	bal, ok := book[account]
	if !ok {
		bal = new(big.Int)
		book[account] = bal
	}
	bal.Add(bal, amount)
}

// BalanceOf implements escrow.Host.
func (s *State) BalanceOf(asset, account common.Address) *big.Int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if book, ok := s.balances[asset]; ok {
		if bal, ok := book[account]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return new(big.Int)
}

// Transfer implements escrow.Host. The transfer applies fully or not
// at all.
func (s *State) Transfer(asset, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: invalid amount", escrow.ErrTransferFailed)
	}
	if amount.Sign() == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	book := s.book(asset)
	fromBal, ok := book[from]
	if !ok || fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %v holds %v of %v, need %v",
			escrow.ErrTransferFailed, from, fromBal, asset, amount)
	}
	toBal, ok := book[to]
	if !ok {
		toBal = new(big.Int)
		book[to] = toBal
	}
	fromBal.Sub(fromBal, amount)
	toBal.Add(toBal, amount)
	log.Trace("ledger transfer", "asset", asset, "from", from, "to", to, "amount", amount)
	return nil
}

// Emit implements escrow.Host.
func (s *State) Emit(ev escrow.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a snapshot of the journal.
func (s *State) Events() []escrow.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]escrow.Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventsByOrder returns the journal entries of one order.
func (s *State) EventsByOrder(orderHash common.Hash) []escrow.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []escrow.Event
	for _, ev := range s.events {
		if ev.OrderHash == orderHash {
			out = append(out, ev)
		}
	}
	return out
}
