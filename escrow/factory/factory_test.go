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

const (
	genesisTime = uint64(1_700_000_000)
	rescueDelay = uint64(100_000)
	skew        = uint64(300)
)

var (
	owner    = common.HexToAddress("0x0000000000000000000000000000000000000add")
	maker    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	taker    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	resolver = common.HexToAddress("0x3333333333333333333333333333333333333333")
	token    = common.HexToAddress("0x5555555555555555555555555555555555555555")
)

func testSecret() [escrow.SecretLength]byte {
	var secret [escrow.SecretLength]byte
	copy(secret[:], []byte("a very well hidden test preimage"))
	return secret
}

func testImmutables(asset common.Address) *escrow.Immutables {
	return &escrow.Immutables{
		OrderHash:     common.Keccak256Hash([]byte("order-1")),
		Hashlock:      escrow.HashSecret(testSecret()),
		Maker:         maker,
		Taker:         taker,
		Asset:         asset,
		Amount:        big.NewInt(1_000_000),
		SafetyDeposit: big.NewInt(50_000),
		Timelocks: escrow.Timelocks{
			SrcWithdrawal:         10,
			SrcPublicWithdrawal:   120,
			SrcCancellation:       240,
			SrcPublicCancellation: 360,
			DstWithdrawal:         10,
			DstPublicWithdrawal:   100,
			DstCancellation:       200,
		},
	}
}

func setupFactory(t *testing.T) (*ledger.State, *factory.Factory) {
	t.Helper()
	host := ledger.NewState(big.NewInt(1), genesisTime)
	whitelist := accesscontrol.NewWhitelist([]common.Address{resolver, taker}, false)
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
	return host, f
}

// fundSrc places the pre-funding at the predicted source escrow address.
func fundSrc(host *ledger.State, f *factory.Factory, im *escrow.Immutables) common.Address {
	predicted := f.PredictAddress(im.Hash(), escrow.RoleSrc)
	if im.Asset == escrow.NativeAsset {
		host.Mint(escrow.NativeAsset, predicted, new(big.Int).Add(im.Amount, im.SafetyDeposit))
	} else {
		host.Mint(im.Asset, predicted, im.Amount)
		host.Mint(escrow.NativeAsset, predicted, im.SafetyDeposit)
	}
	return predicted
}

func TestDeterministicAddress(t *testing.T) {
	deployer := common.HexToAddress("0x00000000000000000000000000000000deadbeef")
	saltA := common.Keccak256Hash([]byte("factory/v1"))
	saltB := common.Keccak256Hash([]byte("factory/v2"))

	assert.Equal(t, factory.DeterministicAddress(deployer, saltA), factory.DeterministicAddress(deployer, saltA))
	assert.NotEqual(t, factory.DeterministicAddress(deployer, saltA), factory.DeterministicAddress(deployer, saltB))
}

func TestCreateSrcEscrow(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(token)
	predicted := fundSrc(host, f, im)

	esc, err := f.CreateSrcEscrow(maker, im)
	require.NoError(t, err)
	assert.Equal(t, predicted, esc.Address(), "created address must match prediction")
	assert.Equal(t, escrow.RoleSrc, esc.Role())
	assert.Equal(t, genesisTime, esc.DeployedAt())

	evs := host.EventsByOrder(im.OrderHash)
	require.Len(t, evs, 1)
	assert.Equal(t, escrow.EventSrcEscrowCreated, evs[0].Type)
	require.NotNil(t, evs[0].Immutables)
	assert.Equal(t, uint32(genesisTime), evs[0].Immutables.Timelocks.DeployedAt, "event must carry the resolved anchor")
}

func TestCreateSrcEscrowUnderfunded(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(token)
	// fund the token book only, not the safety deposit
	host.Mint(im.Asset, f.PredictAddress(im.Hash(), escrow.RoleSrc), im.Amount)

	_, err := f.CreateSrcEscrow(maker, im)
	assert.ErrorIs(t, err, escrow.ErrInsufficientFunding)
}

func TestCreateSrcEscrowDuplicate(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(token)
	fundSrc(host, f, im)

	_, err := f.CreateSrcEscrow(maker, im)
	require.NoError(t, err)

	_, err = f.CreateSrcEscrow(maker, im)
	assert.ErrorIs(t, err, escrow.ErrDuplicateSwap)
}

func TestCreateDstEscrow(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(escrow.NativeAsset)
	host.Mint(escrow.NativeAsset, taker, big.NewInt(2_000_000))

	srcCancellation := genesisTime + 240
	esc, err := f.CreateDstEscrow(taker, im, srcCancellation, nil)
	require.NoError(t, err)
	assert.Equal(t, escrow.RoleDst, esc.Role())

	// funding moved from the caller to the escrow
	want := new(big.Int).Add(im.Amount, im.SafetyDeposit)
	assert.Zero(t, host.BalanceOf(escrow.NativeAsset, esc.Address()).Cmp(want))
}

func TestCreateDstEscrowScheduleSkew(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(escrow.NativeAsset)
	host.Mint(escrow.NativeAsset, taker, big.NewInt(2_000_000))

	// dst cancellation anchors at genesis+200; a src deadline further in
	// the past than the tolerance allows must be rejected
	srcCancellation := genesisTime + 200 - skew - 1
	_, err := f.CreateDstEscrow(taker, im, srcCancellation, nil)
	assert.ErrorIs(t, err, escrow.ErrInvalidSchedule)

	// within tolerance passes
	_, err = f.CreateDstEscrow(taker, im, genesisTime+200-skew, nil)
	assert.NoError(t, err)
}

func TestCreateDstEscrowUnauthorized(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(escrow.NativeAsset)
	stranger := common.HexToAddress("0x9999999999999999999999999999999999999999")
	host.Mint(escrow.NativeAsset, stranger, big.NewInt(2_000_000))

	_, err := f.CreateDstEscrow(stranger, im, genesisTime+240, nil)
	assert.ErrorIs(t, err, escrow.ErrUnauthorized)
}

func TestCreateDstEscrowUnderfunded(t *testing.T) {
	_, f := setupFactory(t)
	im := testImmutables(escrow.NativeAsset)

	_, err := f.CreateDstEscrow(taker, im, genesisTime+240, nil)
	assert.ErrorIs(t, err, escrow.ErrInsufficientFunding)
}

func TestPause(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(token)
	fundSrc(host, f, im)

	require.ErrorIs(t, f.Pause(maker), escrow.ErrUnauthorized)
	require.NoError(t, f.Pause(owner))
	assert.True(t, f.Paused())

	_, err := f.CreateSrcEscrow(maker, im)
	assert.ErrorIs(t, err, escrow.ErrFactoryPaused)

	require.NoError(t, f.Unpause(owner))
	_, err = f.CreateSrcEscrow(maker, im)
	assert.NoError(t, err)
}

func TestOwnerGatedWhitelist(t *testing.T) {
	_, f := setupFactory(t)
	addr := common.HexToAddress("0x7777777777777777777777777777777777777777")

	require.ErrorIs(t, f.SetWhitelisted(maker, addr, true), escrow.ErrUnauthorized)
	require.NoError(t, f.SetWhitelisted(owner, addr, true))
	assert.True(t, f.Whitelist().IsWhitelisted(addr))

	require.NoError(t, f.SetBypass(owner, true))
	assert.True(t, f.Whitelist().Bypass())
}

func TestGetEscrow(t *testing.T) {
	host, f := setupFactory(t)
	im := testImmutables(token)
	fundSrc(host, f, im)

	_, err := f.GetEscrow(im.Hash())
	assert.ErrorIs(t, err, escrow.ErrEscrowNotFound)

	created, err := f.CreateSrcEscrow(maker, im)
	require.NoError(t, err)

	got, err := f.GetEscrow(im.Hash())
	require.NoError(t, err)
	assert.Same(t, created, got)
	assert.Equal(t, 1, f.DeployedCount())
}
