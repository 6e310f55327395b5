// Package partialfill validates the secrets of orders filled in
// multiple pieces. Each part commits to its own hashlock leaf of a
// Merkle tree; the tree root is the order's single published
// commitment. The validator enforces that parts are consumed in strict
// fill order so a resolver cannot reuse a spent secret slot or claim
// more parts than it filled.
package partialfill

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/log"
)

// Fill describes one partial fill to validate before escrow creation.
// Index is 1-based: filling the whole order in N parts uses indices
// 1..N in order.
type Fill struct {
	Root         common.Hash
	Parts        uint32
	Index        uint32
	SecretHash   common.Hash
	Proof        []common.Hash
	FilledAmount *big.Int
	TotalAmount  *big.Int
}

// fillState tracks the consumed leaves of one order.
type fillState struct {
	root      common.Hash
	parts     uint32
	lastIndex uint32 // highest validated index, 0 when none
	used      map[uint32]bool
}

// Validator records, per order, which secret slots were consumed.
type Validator struct {
	mu     sync.Mutex
	orders map[common.Hash]*fillState
}

// NewValidator creates an empty partial fill validator.
func NewValidator() *Validator {
	return &Validator{orders: make(map[common.Hash]*fillState)}
}

// LastIndex returns the highest validated fill index of an order,
// 0 when no part was validated yet.
func (v *Validator) LastIndex(orderHash common.Hash) uint32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if st, ok := v.orders[orderHash]; ok {
		return st.lastIndex
	}
	return 0
}

// ValidateFill checks one partial fill against the order commitment and
// the consumption record, and marks its slot consumed on success. A
// failing fill leaves no trace, so the same slot can be retried after
// a transient creation failure.
func (v *Validator) ValidateFill(orderHash common.Hash, fill *Fill) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.checkFill(orderHash, fill); err != nil {
		return err
	}

	st, ok := v.orders[orderHash]
	if !ok {
		st = &fillState{root: fill.Root, parts: fill.Parts, used: make(map[uint32]bool)}
		v.orders[orderHash] = st
	}
	st.used[fill.Index] = true
	st.lastIndex = fill.Index
	log.Debug("partial fill validated", "orderHash", orderHash, "index", fill.Index, "parts", fill.Parts)
	return nil
}

// checkFill runs every fill check without mutating the consumption
// record. The order state is created (and its commitment pinned) only
// when a fill actually consumes a slot.
func (v *Validator) checkFill(orderHash common.Hash, fill *Fill) error {
	if fill == nil {
		return fmt.Errorf("%w: missing fill data", escrow.ErrInvalidPartialFill)
	}
	if fill.Parts < 2 {
		return fmt.Errorf("%w: order split into %d parts", escrow.ErrInvalidPartialFill, fill.Parts)
	}
	if fill.Index == 0 || fill.Index > fill.Parts {
		return fmt.Errorf("%w: index %d out of range 1..%d", escrow.ErrInvalidPartialFill, fill.Index, fill.Parts)
	}
	if fill.TotalAmount == nil || fill.TotalAmount.Sign() <= 0 ||
		fill.FilledAmount == nil || fill.FilledAmount.Sign() <= 0 ||
		fill.FilledAmount.Cmp(fill.TotalAmount) > 0 {
		return fmt.Errorf("%w: filled amount out of range", escrow.ErrInvalidPartialFill)
	}
	if !Verify(fill.Root, Leaf(fill.Index, fill.SecretHash), fill.Proof) {
		return fmt.Errorf("%w: merkle proof does not open commitment", escrow.ErrInvalidPartialFill)
	}

	if st, ok := v.orders[orderHash]; ok {
		if st.root != fill.Root || st.parts != fill.Parts {
			return fmt.Errorf("%w: commitment changed mid-order", escrow.ErrInvalidPartialFill)
		}
		if st.used[fill.Index] {
			return fmt.Errorf("%w: index %d already consumed", escrow.ErrInvalidPartialFill, fill.Index)
		}
		if fill.Index <= st.lastIndex {
			return fmt.Errorf("%w: index %d not after last validated %d", escrow.ErrInvalidPartialFill, fill.Index, st.lastIndex)
		}
	}

	// The consumed slot must match the cumulative fill ratio: after
	// filling filled/total of the order the resolver may consume at
	// most ceil(filled*parts/total) slots.
	expected := expectedIndex(fill.FilledAmount, fill.TotalAmount, fill.Parts)
	if fill.Index != expected {
		return fmt.Errorf("%w: index %d inconsistent with fill ratio, expected %d",
			escrow.ErrInvalidPartialFill, fill.Index, expected)
	}
	return nil
}

// expectedIndex is ceil(filled * parts / total), clamped to parts.
func expectedIndex(filled, total *big.Int, parts uint32) uint32 {
	num := new(big.Int).Mul(filled, new(big.Int).SetUint64(uint64(parts)))
	num.Add(num, new(big.Int).Sub(total, big.NewInt(1)))
	num.Div(num, total)
	if !num.IsUint64() || num.Uint64() > uint64(parts) {
		return parts
	}
	return uint32(num.Uint64())
}

// Leaf computes the tree leaf of one secret slot.
func Leaf(index uint32, secretHash common.Hash) common.Hash {
	var idx [32]byte
	binary.BigEndian.PutUint32(idx[28:], index)
	return common.Keccak256Hash(idx[:], secretHash.Bytes())
}

// hashPair combines two nodes with the smaller one first, so proofs
// need no left/right flags.
func hashPair(a, b common.Hash) common.Hash {
	if a.Big().Cmp(b.Big()) > 0 {
		a, b = b, a
	}
	return common.Keccak256Hash(a.Bytes(), b.Bytes())
}

// Root folds the leaves into the tree root. Odd nodes are promoted
// unchanged to the next level.
func Root(leaves []common.Hash) common.Hash {
	if len(leaves) == 0 {
		return common.Hash{}
	}
	level := make([]common.Hash, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}

// Proof builds the membership proof of leaf position pos.
func Proof(leaves []common.Hash, pos int) []common.Hash {
	if pos < 0 || pos >= len(leaves) {
		return nil
	}
	var proof []common.Hash
	level := make([]common.Hash, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashPair(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
		pos /= 2
	}
	return proof
}

// Verify checks a membership proof against the root.
func Verify(root, leaf common.Hash, proof []common.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}
