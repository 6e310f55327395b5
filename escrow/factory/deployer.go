package factory

import (
	"fmt"

	"github.com/crosslock/CrossChain-Escrow/accesscontrol"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
)

// DeterministicAddress derives a deployment address from a deployer
// address and a salt, independent of deployment order. Placing the
// factory through this scheme with the same deployer and salt on every
// ledger gives the factory one address everywhere, so swap parties can
// predict escrow addresses on a ledger they have never touched.
func DeterministicAddress(deployer common.Address, salt common.Hash) common.Address {
	data := make([]byte, 0, 1+common.AddressLength+common.HashLength)
	data = append(data, 0xff)
	data = append(data, deployer.Bytes()...)
	data = append(data, salt.Bytes()...)
	return common.BytesToAddress(common.Keccak256(data)[12:])
}

// Deployer places factories at deterministic addresses. One deployer
// instance per ledger, all sharing the deployer address and salt.
type Deployer struct {
	address common.Address
	salt    common.Hash
}

// NewDeployer creates a deployer identity. The salt tags the factory
// release so a redeploy under a new salt gets a fresh address.
func NewDeployer(address common.Address, salt common.Hash) *Deployer {
	return &Deployer{address: address, salt: salt}
}

// FactoryAddress returns the address the deployer places factories at.
func (d *Deployer) FactoryAddress() common.Address {
	return DeterministicAddress(d.address, d.salt)
}

// Deploy creates a factory at the deployer's deterministic address on
// the given host. cfg.Address is assigned by the deployer; a non-zero
// preset address that disagrees is rejected.
func (d *Deployer) Deploy(cfg Config, host escrow.Host, whitelist *accesscontrol.Whitelist, verifier escrow.AccessVerifier) (*Factory, error) {
	addr := d.FactoryAddress()
	if !cfg.Address.IsZero() && cfg.Address != addr {
		return nil, fmt.Errorf("%w: preset factory address %v disagrees with derived %v",
			escrow.ErrInvalidParameters, cfg.Address, addr)
	}
	cfg.Address = addr
	return New(cfg, host, whitelist, verifier), nil
}
