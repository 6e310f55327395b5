package escrow

import (
	"fmt"
	"math/big"

	"github.com/crosslock/CrossChain-Escrow/common"
)

// NativeAsset is the asset identifier sentinel of the ledger's native
// asset. Any other value identifies a token book.
var NativeAsset = common.Address{}

// SecretLength is the required byte length of a swap secret.
const SecretLength = 32

// HashSecret computes the hashlock of a secret.
func HashSecret(secret [SecretLength]byte) common.Hash {
	return common.Keccak256Hash(secret[:])
}

// Immutables is the canonical description of one swap leg. It is fixed
// at escrow creation; every escrow operation takes it as an explicit
// argument and re-verifies it against the escrow address.
type Immutables struct {
	OrderHash     common.Hash
	Hashlock      common.Hash
	Maker         common.Address // principal, funds the source leg
	Taker         common.Address // counterparty, funds the destination leg
	Asset         common.Address // NativeAsset or token identifier
	Amount        *big.Int
	SafetyDeposit *big.Int
	Timelocks     Timelocks
	Parameters    []byte // opaque extension bytes
}

// Validate ensures the immutables describe a well formed swap leg.
func (im *Immutables) Validate() error {
	if im.Hashlock.IsZero() {
		return fmt.Errorf("%w: empty hashlock", ErrInvalidParameters)
	}
	if im.Maker.IsZero() {
		return fmt.Errorf("%w: empty maker address", ErrInvalidParameters)
	}
	if im.Taker.IsZero() {
		return fmt.Errorf("%w: empty taker address", ErrInvalidParameters)
	}
	if im.Amount == nil || im.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive amount", ErrInvalidParameters)
	}
	if im.SafetyDeposit == nil || im.SafetyDeposit.Sign() < 0 {
		return fmt.Errorf("%w: negative safety deposit", ErrInvalidParameters)
	}
	if im.Amount.BitLen() > 256 || im.SafetyDeposit.BitLen() > 256 {
		return fmt.Errorf("%w: amount exceeds 256 bits", ErrInvalidParameters)
	}
	return im.Timelocks.Validate()
}

// Hash computes the content hash used as the deployment salt and the
// duplicate-prevention key. Every field contributes through a fixed
// width slot so distinct immutables cannot collide. The timelock
// contribution covers the relative offsets only: the anchor is chosen
// at creation time and must not move the deployment address.
func (im *Immutables) Hash() common.Hash {
	var enc [9 * 32]byte
	copy(enc[0:32], im.OrderHash.Bytes())
	copy(enc[32:64], im.Hashlock.Bytes())
	copy(enc[64:96], im.Maker.Hash().Bytes())
	copy(enc[96:128], im.Taker.Hash().Bytes())
	copy(enc[128:160], im.Asset.Hash().Bytes())
	if im.Amount != nil {
		im.Amount.FillBytes(enc[160:192])
	}
	if im.SafetyDeposit != nil {
		im.SafetyDeposit.FillBytes(enc[192:224])
	}
	unanchored := im.Timelocks
	unanchored.DeployedAt = 0
	word := unanchored.Pack()
	copy(enc[224:256], word[:])
	copy(enc[256:288], common.Keccak256(im.Parameters))
	return common.Keccak256Hash(enc[:])
}

// Clone returns a deep copy of the immutables.
func (im *Immutables) Clone() *Immutables {
	cp := *im
	if im.Amount != nil {
		cp.Amount = new(big.Int).Set(im.Amount)
	}
	if im.SafetyDeposit != nil {
		cp.SafetyDeposit = new(big.Int).Set(im.SafetyDeposit)
	}
	cp.Parameters = common.CopyBytes(im.Parameters)
	return &cp
}
