package partialfill

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
)

// order fixture: 4 parts, one secret slot per part
func testOrder(parts uint32) (orderHash common.Hash, secretHashes []common.Hash, leaves []common.Hash) {
	orderHash = common.Keccak256Hash([]byte("order-1"))
	secretHashes = make([]common.Hash, parts)
	leaves = make([]common.Hash, parts)
	for i := uint32(0); i < parts; i++ {
		secretHashes[i] = common.Keccak256Hash([]byte(fmt.Sprintf("secret-%d", i+1)))
		leaves[i] = Leaf(i+1, secretHashes[i])
	}
	return orderHash, secretHashes, leaves
}

func testFill(index uint32, secretHashes, leaves []common.Hash, filled, total int64) *Fill {
	return &Fill{
		Root:         Root(leaves),
		Parts:        uint32(len(leaves)),
		Index:        index,
		SecretHash:   secretHashes[index-1],
		Proof:        Proof(leaves, int(index-1)),
		FilledAmount: big.NewInt(filled),
		TotalAmount:  big.NewInt(total),
	}
}

func TestMerkleRootAndProof(t *testing.T) {
	for _, n := range []uint32{2, 3, 4, 7, 8} {
		_, _, leaves := testOrder(n)
		root := Root(leaves)
		for i := range leaves {
			proof := Proof(leaves, i)
			assert.True(t, Verify(root, leaves[i], proof), "leaf %d of %d", i, n)
		}
		// a proof must not open a different leaf
		assert.False(t, Verify(root, common.Keccak256Hash([]byte("bogus")), Proof(leaves, 0)))
	}
}

func TestValidateFillSequence(t *testing.T) {
	v := NewValidator()
	orderHash, secretHashes, leaves := testOrder(4)

	// 4 equal parts filled in order
	for i := int64(1); i <= 4; i++ {
		fill := testFill(uint32(i), secretHashes, leaves, i*250, 1000)
		require.NoError(t, v.ValidateFill(orderHash, fill), "part %d", i)
	}
	assert.Equal(t, uint32(4), v.LastIndex(orderHash))
}

func TestValidateFillReplay(t *testing.T) {
	v := NewValidator()
	orderHash, secretHashes, leaves := testOrder(4)

	require.NoError(t, v.ValidateFill(orderHash, testFill(1, secretHashes, leaves, 250, 1000)))
	require.NoError(t, v.ValidateFill(orderHash, testFill(2, secretHashes, leaves, 500, 1000)))
	require.NoError(t, v.ValidateFill(orderHash, testFill(3, secretHashes, leaves, 750, 1000)))

	// replaying an earlier slot must fail
	err := v.ValidateFill(orderHash, testFill(2, secretHashes, leaves, 500, 1000))
	assert.ErrorIs(t, err, escrow.ErrInvalidPartialFill)
}

func TestValidateFillIndexMustMatchRatio(t *testing.T) {
	v := NewValidator()
	orderHash, secretHashes, leaves := testOrder(4)

	// filling half the order must consume slot 2, not slot 3
	err := v.ValidateFill(orderHash, testFill(3, secretHashes, leaves, 500, 1000))
	assert.ErrorIs(t, err, escrow.ErrInvalidPartialFill)

	// uneven fill rounds up: 600/1000 of 4 parts consumes slot 3
	require.NoError(t, v.ValidateFill(orderHash, testFill(3, secretHashes, leaves, 600, 1000)))
}

func TestValidateFillRejectsBadInput(t *testing.T) {
	v := NewValidator()
	orderHash, secretHashes, leaves := testOrder(4)

	cases := []struct {
		desc   string
		mutate func(*Fill)
	}{
		{"nil fill", nil},
		{"one part order", func(f *Fill) { f.Parts = 1; f.Index = 1 }},
		{"zero index", func(f *Fill) { f.Index = 0 }},
		{"index beyond parts", func(f *Fill) { f.Index = 5 }},
		{"zero filled", func(f *Fill) { f.FilledAmount = big.NewInt(0) }},
		{"overfilled", func(f *Fill) { f.FilledAmount = big.NewInt(2000) }},
		{"broken proof", func(f *Fill) { f.Proof = nil }},
		{"foreign root", func(f *Fill) { f.Root = common.Keccak256Hash([]byte("bogus")) }},
	}
	for _, c := range cases {
		var fill *Fill
		if c.mutate != nil {
			fill = testFill(1, secretHashes, leaves, 250, 1000)
			c.mutate(fill)
		}
		err := v.ValidateFill(orderHash, fill)
		assert.ErrorIs(t, err, escrow.ErrInvalidPartialFill, c.desc)
	}
}

func TestValidateFillCommitmentPinned(t *testing.T) {
	v := NewValidator()
	orderHash, secretHashes, leaves := testOrder(4)
	require.NoError(t, v.ValidateFill(orderHash, testFill(1, secretHashes, leaves, 250, 1000)))

	// a different tree for the same order is rejected even with a valid proof
	_, otherHashes, otherLeaves := testOrder(8)
	fill := testFill(2, otherHashes, otherLeaves, 250, 1000)
	err := v.ValidateFill(orderHash, fill)
	assert.ErrorIs(t, err, escrow.ErrInvalidPartialFill)
}

func TestValidateFillFailureLeavesNoTrace(t *testing.T) {
	v := NewValidator()
	orderHash, secretHashes, leaves := testOrder(4)

	// a rejected fill must not consume the slot nor pin a commitment
	err := v.ValidateFill(orderHash, testFill(2, secretHashes, leaves, 250, 1000))
	require.ErrorIs(t, err, escrow.ErrInvalidPartialFill)
	assert.Equal(t, uint32(0), v.LastIndex(orderHash))

	// a failing fill with a foreign tree must not pin that tree either
	_, otherHashes, otherLeaves := testOrder(8)
	err = v.ValidateFill(orderHash, testFill(3, otherHashes, otherLeaves, 250, 1000))
	require.ErrorIs(t, err, escrow.ErrInvalidPartialFill)

	// the legitimate first fill still passes afterwards
	require.NoError(t, v.ValidateFill(orderHash, testFill(1, secretHashes, leaves, 250, 1000)))
	assert.Equal(t, uint32(1), v.LastIndex(orderHash))
}

func TestExpectedIndexRounding(t *testing.T) {
	cases := []struct {
		filled, total int64
		parts, want   uint32
	}{
		{1, 1000, 4, 1},
		{250, 1000, 4, 1},
		{251, 1000, 4, 2},
		{500, 1000, 4, 2},
		{999, 1000, 4, 4},
		{1000, 1000, 4, 4},
	}
	for _, c := range cases {
		got := expectedIndex(big.NewInt(c.filled), big.NewInt(c.total), c.parts)
		assert.Equal(t, c.want, got, "filled %d/%d parts %d", c.filled, c.total, c.parts)
	}
}
