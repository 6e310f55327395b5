package factory_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslock/CrossChain-Escrow/accesscontrol"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/escrow/factory"
	"github.com/crosslock/CrossChain-Escrow/ledger"
)

// chain bundles one side of the cross-ledger swap setup.
type chain struct {
	host *ledger.State
	f    *factory.Factory
}

// newChain deploys a factory through the shared deployer identity, so
// both chains see the factory at the same address.
func newChain(t *testing.T, chainID int64) *chain {
	t.Helper()
	host := ledger.NewState(big.NewInt(chainID), genesisTime)
	whitelist := accesscontrol.NewWhitelist([]common.Address{taker}, false)
	deployer := factory.NewDeployer(
		common.HexToAddress("0x00000000000000000000000000000000deadbeef"),
		common.Keccak256Hash([]byte("factory/v1")),
	)
	f, err := deployer.Deploy(factory.Config{
		Owner:               owner,
		RescueDelay:         rescueDelay,
		CancelSkewTolerance: skew,
	}, host, whitelist, whitelist)
	require.NoError(t, err)
	return &chain{host: host, f: f}
}

// TestCrossChainSwap walks the full happy path: the maker locks tokens
// on the source chain, the taker locks native funds on the destination
// chain, the maker claims on the destination revealing the secret, and
// the taker replays the secret on the source.
func TestCrossChainSwap(t *testing.T) {
	src := newChain(t, 1)
	dst := newChain(t, 2)
	require.Equal(t, src.f.Address(), dst.f.Address(), "factories must share one address")

	secret := testSecret()

	srcIm := testImmutables(token)
	dstIm := testImmutables(escrow.NativeAsset)
	dstIm.Amount = big.NewInt(900_000) // the counter amount of the trade

	// maker pre-funds the predicted source escrow
	predicted := src.f.PredictAddress(srcIm.Hash(), escrow.RoleSrc)
	src.host.Mint(token, predicted, srcIm.Amount)
	src.host.Mint(escrow.NativeAsset, predicted, srcIm.SafetyDeposit)
	srcEsc, err := src.f.CreateSrcEscrow(maker, srcIm)
	require.NoError(t, err)
	srcIm.Timelocks = srcIm.Timelocks.WithDeployedAt(srcEsc.DeployedAt())

	// taker funds the destination escrow from its own balance
	dst.host.Mint(escrow.NativeAsset, taker, big.NewInt(1_000_000))
	srcCancellation := srcIm.Timelocks.Get(escrow.StageSrcCancellation)
	dstEsc, err := dst.f.CreateDstEscrow(taker, dstIm, srcCancellation, nil)
	require.NoError(t, err)
	dstIm.Timelocks = dstIm.Timelocks.WithDeployedAt(dstEsc.DeployedAt())

	// maker claims on the destination, revealing the secret
	dst.host.AdvanceTime(10)
	require.NoError(t, dstEsc.Claim(dst.host, maker, secret, dstIm))
	assert.Zero(t, dst.host.BalanceOf(escrow.NativeAsset, maker).Cmp(
		new(big.Int).Add(dstIm.Amount, dstIm.SafetyDeposit)))

	// the secret is now public via the claim event
	evs := dst.host.EventsByOrder(dstIm.OrderHash)
	var revealed []byte
	for _, ev := range evs {
		if ev.Type == escrow.EventEscrowClaimed {
			revealed = ev.Secret
		}
	}
	require.Len(t, revealed, escrow.SecretLength)
	require.True(t, escrow.SecretMatches(revealed, srcIm.Hashlock))

	// taker replays the revealed secret on the source
	src.host.AdvanceTime(10)
	var replay [escrow.SecretLength]byte
	copy(replay[:], revealed)
	require.NoError(t, srcEsc.Claim(src.host, taker, replay, srcIm))
	assert.Zero(t, src.host.BalanceOf(token, taker).Cmp(srcIm.Amount))

	assert.Equal(t, escrow.StatusClaimed, srcEsc.Status())
	assert.Equal(t, escrow.StatusClaimed, dstEsc.Status())
}

// TestCrossChainSwapTimeout walks the refund path: nobody claims, both
// sides cancel after their windows and recover their own funds.
func TestCrossChainSwapTimeout(t *testing.T) {
	src := newChain(t, 1)
	dst := newChain(t, 2)

	srcIm := testImmutables(token)
	dstIm := testImmutables(escrow.NativeAsset)

	predicted := src.f.PredictAddress(srcIm.Hash(), escrow.RoleSrc)
	src.host.Mint(token, predicted, srcIm.Amount)
	src.host.Mint(escrow.NativeAsset, predicted, srcIm.SafetyDeposit)
	srcEsc, err := src.f.CreateSrcEscrow(maker, srcIm)
	require.NoError(t, err)
	srcIm.Timelocks = srcIm.Timelocks.WithDeployedAt(srcEsc.DeployedAt())

	dst.host.Mint(escrow.NativeAsset, taker, big.NewInt(2_000_000))
	srcCancellation := srcIm.Timelocks.Get(escrow.StageSrcCancellation)
	dstEsc, err := dst.f.CreateDstEscrow(taker, dstIm, srcCancellation, nil)
	require.NoError(t, err)
	dstIm.Timelocks = dstIm.Timelocks.WithDeployedAt(dstEsc.DeployedAt())

	// destination cancels first by construction of the schedule
	dst.host.AdvanceTime(200)
	require.NoError(t, dstEsc.Cancel(dst.host, taker, dstIm))
	assert.Zero(t, dst.host.BalanceOf(escrow.NativeAsset, taker).Cmp(big.NewInt(2_000_000)),
		"taker must recover the full destination funding")

	src.host.AdvanceTime(240)
	require.NoError(t, srcEsc.Cancel(src.host, maker, srcIm))
	assert.Zero(t, src.host.BalanceOf(token, maker).Cmp(srcIm.Amount))
	assert.Zero(t, src.host.BalanceOf(escrow.NativeAsset, maker).Cmp(srcIm.SafetyDeposit))

	assert.Equal(t, escrow.StatusCancelled, srcEsc.Status())
	assert.Equal(t, escrow.StatusCancelled, dstEsc.Status())
}
