package factory_test

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/escrow/partialfill"
)

// partialOrder builds a 4 part order: each part has its own secret and
// the tree of per-part hashlocks is the published commitment.
func partialOrder(parts uint32) (secrets [][escrow.SecretLength]byte, hashes, leaves []common.Hash) {
	secrets = make([][escrow.SecretLength]byte, parts)
	hashes = make([]common.Hash, parts)
	leaves = make([]common.Hash, parts)
	for i := uint32(0); i < parts; i++ {
		copy(secrets[i][:], common.Keccak256([]byte(fmt.Sprintf("part-secret-%d", i+1))))
		hashes[i] = escrow.HashSecret(secrets[i])
		leaves[i] = partialfill.Leaf(i+1, hashes[i])
	}
	return secrets, hashes, leaves
}

func partImmutables(index uint32, hashes []common.Hash, amount int64) *escrow.Immutables {
	im := testImmutables(token)
	im.Hashlock = hashes[index-1]
	im.Amount = big.NewInt(amount)
	return im
}

func TestCreateSrcEscrowWithFill(t *testing.T) {
	host, f := setupFactory(t)
	_, hashes, leaves := partialOrder(4)
	root := partialfill.Root(leaves)

	filled := int64(0)
	for i := uint32(1); i <= 4; i++ {
		filled += 250
		im := partImmutables(i, hashes, 250)
		fundSrc(host, f, im)
		fill := &partialfill.Fill{
			Root:         root,
			Parts:        4,
			Index:        i,
			SecretHash:   hashes[i-1],
			Proof:        partialfill.Proof(leaves, int(i-1)),
			FilledAmount: big.NewInt(filled),
			TotalAmount:  big.NewInt(1000),
		}
		esc, err := f.CreateSrcEscrowWithFill(maker, im, fill)
		require.NoError(t, err, "part %d", i)
		assert.Equal(t, f.PredictAddress(im.Hash(), escrow.RoleSrc), esc.Address())
	}
	assert.Equal(t, 4, f.DeployedCount())
}

func TestCreateSrcEscrowWithFillRejectsReplay(t *testing.T) {
	host, f := setupFactory(t)
	_, hashes, leaves := partialOrder(4)
	root := partialfill.Root(leaves)

	makeFill := func(index uint32, filled int64) *partialfill.Fill {
		return &partialfill.Fill{
			Root:         root,
			Parts:        4,
			Index:        index,
			SecretHash:   hashes[index-1],
			Proof:        partialfill.Proof(leaves, int(index-1)),
			FilledAmount: big.NewInt(filled),
			TotalAmount:  big.NewInt(1000),
		}
	}

	im := partImmutables(2, hashes, 500)
	fundSrc(host, f, im)
	_, err := f.CreateSrcEscrowWithFill(maker, im, makeFill(2, 500))
	require.NoError(t, err)

	// consuming an already spent or earlier slot must fail
	im2 := partImmutables(1, hashes, 250)
	fundSrc(host, f, im2)
	_, err = f.CreateSrcEscrowWithFill(maker, im2, makeFill(1, 250))
	assert.ErrorIs(t, err, escrow.ErrInvalidPartialFill)
}

func TestCreateSrcEscrowWithFillRetryAfterFailure(t *testing.T) {
	host, f := setupFactory(t)
	_, hashes, leaves := partialOrder(4)
	root := partialfill.Root(leaves)

	makeFill := func(index uint32, filled int64) *partialfill.Fill {
		return &partialfill.Fill{
			Root:         root,
			Parts:        4,
			Index:        index,
			SecretHash:   hashes[index-1],
			Proof:        partialfill.Proof(leaves, int(index-1)),
			FilledAmount: big.NewInt(filled),
			TotalAmount:  big.NewInt(1000),
		}
	}

	// pre-funding has not landed yet: creation fails and must not
	// consume the fill slot
	im := partImmutables(1, hashes, 250)
	_, err := f.CreateSrcEscrowWithFill(maker, im, makeFill(1, 250))
	require.ErrorIs(t, err, escrow.ErrInsufficientFunding)
	require.Equal(t, 0, f.DeployedCount())

	fundSrc(host, f, im)
	esc, err := f.CreateSrcEscrowWithFill(maker, im, makeFill(1, 250))
	require.NoError(t, err)
	assert.Equal(t, f.PredictAddress(im.Hash(), escrow.RoleSrc), esc.Address())

	// same for a creation rejected while paused
	im2 := partImmutables(2, hashes, 250)
	fundSrc(host, f, im2)
	require.NoError(t, f.Pause(owner))
	_, err = f.CreateSrcEscrowWithFill(maker, im2, makeFill(2, 500))
	require.ErrorIs(t, err, escrow.ErrFactoryPaused)

	require.NoError(t, f.Unpause(owner))
	_, err = f.CreateSrcEscrowWithFill(maker, im2, makeFill(2, 500))
	require.NoError(t, err)
	assert.Equal(t, 2, f.DeployedCount())
}

func TestCreateSrcEscrowWithFillHashlockMismatch(t *testing.T) {
	host, f := setupFactory(t)
	_, hashes, leaves := partialOrder(4)

	im := partImmutables(1, hashes, 250)
	im.Hashlock = common.Keccak256Hash([]byte("unrelated"))
	fundSrc(host, f, im)

	fill := &partialfill.Fill{
		Root:         partialfill.Root(leaves),
		Parts:        4,
		Index:        1,
		SecretHash:   hashes[0],
		Proof:        partialfill.Proof(leaves, 0),
		FilledAmount: big.NewInt(250),
		TotalAmount:  big.NewInt(1000),
	}
	_, err := f.CreateSrcEscrowWithFill(maker, im, fill)
	assert.ErrorIs(t, err, escrow.ErrInvalidPartialFill)
}
