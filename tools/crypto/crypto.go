// Package crypto wraps the secp256k1 signing and recovery primitives
// used by the signed-authorization and admin-call paths.
package crypto

import (
	"crypto/ecdsa"
	"errors"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/crosslock/CrossChain-Escrow/common"
)

// SignatureLength indicates the byte length required to carry a signature
// with recovery id (64 bytes ECDSA signature + 1 byte recovery id).
const SignatureLength = ethcrypto.SignatureLength

// DigestLength sets the signature digest exact length.
const DigestLength = ethcrypto.DigestLength

var errInvalidSignature = errors.New("invalid signature length")

// GenerateKey generates a new secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ethcrypto.GenerateKey()
}

// HexToECDSA parses a secp256k1 private key from its hex form.
func HexToECDSA(hexkey string) (*ecdsa.PrivateKey, error) {
	return ethcrypto.HexToECDSA(hexkey)
}

// Sign calculates an ECDSA signature over the given digest.
// The produced signature is in [R || S || V] format where V is 0 or 1.
func Sign(digestHash []byte, prv *ecdsa.PrivateKey) ([]byte, error) {
	return ethcrypto.Sign(digestHash, prv)
}

// Ecrecover returns the uncompressed public key that created the signature.
func Ecrecover(digestHash, sig []byte) ([]byte, error) {
	if len(sig) != SignatureLength {
		return nil, errInvalidSignature
	}
	return ethcrypto.Ecrecover(digestHash, sig)
}

// SigToAddress recovers the signer address of a [R || S || V] signature.
func SigToAddress(digestHash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, errInvalidSignature
	}
	pub, err := ethcrypto.SigToPub(digestHash, sig)
	if err != nil {
		return common.Address{}, err
	}
	return PubkeyToAddress(*pub), nil
}

// PubkeyToAddress derives the account address of a public key.
func PubkeyToAddress(pub ecdsa.PublicKey) common.Address {
	addr := ethcrypto.PubkeyToAddress(pub)
	return common.BytesToAddress(addr.Bytes())
}
