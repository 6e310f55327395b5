// Package accesscontrol implements the admission paths gating public
// escrow transitions and destination escrow creation: a membership
// whitelist, a signed-authorization bypass, and their OR composition.
package accesscontrol

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/log"
)

// Whitelist is a settable membership list with an optional global
// bypass flag used for permissionless operation.
type Whitelist struct {
	members mapset.Set // of common.Address

	mu     sync.RWMutex
	bypass bool
}

var _ escrow.AccessVerifier = (*Whitelist)(nil)

// NewWhitelist creates a whitelist with the given initial members.
func NewWhitelist(members []common.Address, bypass bool) *Whitelist {
	set := mapset.NewSet()
	for _, m := range members {
		set.Add(m)
	}
	return &Whitelist{members: set, bypass: bypass}
}

// SetWhitelisted adds or removes a member.
func (w *Whitelist) SetWhitelisted(addr common.Address, ok bool) {
	if ok {
		w.members.Add(addr)
	} else {
		w.members.Remove(addr)
	}
	log.Info("update whitelist", "address", addr, "whitelisted", ok)
}

// IsWhitelisted returns true if addr is a member.
func (w *Whitelist) IsWhitelisted(addr common.Address) bool {
	return w.members.Contains(addr)
}

// SetBypass toggles the global bypass flag.
func (w *Whitelist) SetBypass(bypass bool) {
	w.mu.Lock()
	w.bypass = bypass
	w.mu.Unlock()
	log.Info("update whitelist bypass", "bypass", bypass)
}

// Bypass returns the global bypass flag.
func (w *Whitelist) Bypass() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bypass
}

// Authorize implements escrow.AccessVerifier by plain membership.
func (w *Whitelist) Authorize(caller common.Address, action string, orderHash common.Hash, auth []byte) error {
	if w.Bypass() || w.members.Contains(caller) {
		return nil
	}
	return fmt.Errorf("%w: %v is not whitelisted", escrow.ErrUnauthorized, caller)
}

// AnyOf composes verifiers with logical OR. Authorization succeeds if
// any member admits the caller.
type AnyOf []escrow.AccessVerifier

var _ escrow.AccessVerifier = AnyOf(nil)

// Authorize implements escrow.AccessVerifier.
func (v AnyOf) Authorize(caller common.Address, action string, orderHash common.Hash, auth []byte) error {
	var firstErr error
	for _, verifier := range v {
		err := verifier.Authorize(caller, action, orderHash, auth)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = escrow.ErrUnauthorized
	}
	return firstErr
}
