package accesscontrol

import (
	"fmt"
	"math/big"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/tools/crypto"
)

var (
	domainTypeHash = common.Keccak256Hash(
		[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	authorizationTypeHash = common.Keccak256Hash(
		[]byte("ExecutorAuthorization(bytes32 orderHash,address executor,string action)"))
)

// Membership is the subset of Whitelist the signed path needs: the
// recovered signer must itself be a member.
type Membership interface {
	IsWhitelisted(addr common.Address) bool
}

// SignedAuth admits callers that present a typed-data signature from a
// whitelisted member binding (order hash, executor, action). It lets a
// member pre-authorize a third party executor for one specific action
// without putting the executor on the list.
type SignedAuth struct {
	domainSeparator common.Hash
	members         Membership
}

var _ escrow.AccessVerifier = (*SignedAuth)(nil)

// NewSignedAuth creates the signed admission path. The domain separator
// binds signatures to one deployment: same name/version/chain/contract
// must be used by the off-chain signer.
func NewSignedAuth(name, version string, chainID *big.Int, verifyingContract common.Address, members Membership) *SignedAuth {
	var enc [5 * 32]byte
	copy(enc[0:32], domainTypeHash.Bytes())
	copy(enc[32:64], common.Keccak256([]byte(name)))
	copy(enc[64:96], common.Keccak256([]byte(version)))
	if chainID != nil {
		chainID.FillBytes(enc[96:128])
	}
	copy(enc[128:160], verifyingContract.Hash().Bytes())
	return &SignedAuth{
		domainSeparator: common.Keccak256Hash(enc[:]),
		members:         members,
	}
}

// Digest computes the signing digest for one authorization.
func (s *SignedAuth) Digest(orderHash common.Hash, executor common.Address, action string) common.Hash {
	var enc [4 * 32]byte
	copy(enc[0:32], authorizationTypeHash.Bytes())
	copy(enc[32:64], orderHash.Bytes())
	copy(enc[64:96], executor.Hash().Bytes())
	copy(enc[96:128], common.Keccak256([]byte(action)))
	structHash := common.Keccak256(enc[:])
	return common.Keccak256Hash([]byte{0x19, 0x01}, s.domainSeparator.Bytes(), structHash)
}

// Authorize implements escrow.AccessVerifier. auth must be a 65 byte
// [R || S || V] signature over Digest(orderHash, caller, action) from a
// whitelisted signer.
func (s *SignedAuth) Authorize(caller common.Address, action string, orderHash common.Hash, auth []byte) error {
	if len(auth) != crypto.SignatureLength {
		return fmt.Errorf("%w: authorization signature must be %d bytes, got %d",
			escrow.ErrUnauthorized, crypto.SignatureLength, len(auth))
	}
	digest := s.Digest(orderHash, caller, action)
	signer, err := crypto.SigToAddress(digest.Bytes(), auth)
	if err != nil {
		return fmt.Errorf("%w: recover authorization signer: %v", escrow.ErrUnauthorized, err)
	}
	if !s.members.IsWhitelisted(signer) {
		return fmt.Errorf("%w: authorization signer %v is not whitelisted", escrow.ErrUnauthorized, signer)
	}
	return nil
}
