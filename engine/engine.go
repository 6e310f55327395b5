// Package engine assembles the running node from the loaded config: the
// host ledger, the access control paths and the deterministic factory.
package engine

import (
	"github.com/crosslock/CrossChain-Escrow/accesscontrol"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/escrow/factory"
	"github.com/crosslock/CrossChain-Escrow/ledger"
	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/crosslock/CrossChain-Escrow/params"
)

var (
	hostLedger *ledger.State
	theFactory *factory.Factory
)

// defaults applied when the config leaves them out
const (
	defaultCancelSkewTolerance = 300 // seconds
	defaultSignerDomainName    = "CrossLockEscrow"
	defaultSignerDomainVersion = "1"
)

// StartEngine builds the node runtime from the loaded config.
func StartEngine() {
	config := params.GetConfig()
	chainID := params.GetChainID()

	hostLedger = ledger.NewRealtimeState(chainID)

	ac := config.AccessControl
	members := make([]common.Address, 0, len(ac.Whitelist))
	for _, m := range ac.Whitelist {
		members = append(members, common.HexToAddress(m))
	}
	whitelist := accesscontrol.NewWhitelist(members, ac.Bypass)

	fc := config.Factory
	skew := fc.CancelSkewTolerance
	if skew == 0 {
		skew = defaultCancelSkewTolerance
	}
	deployer := factory.NewDeployer(
		common.HexToAddress(fc.DeployerAddress),
		common.Keccak256Hash([]byte(fc.DeploySalt)),
	)

	domainName := ac.SignerDomainName
	domainVersion := ac.SignerDomainVersion
	if domainName == "" {
		domainName = defaultSignerDomainName
		domainVersion = defaultSignerDomainVersion
	}
	signed := accesscontrol.NewSignedAuth(domainName, domainVersion, chainID, deployer.FactoryAddress(), whitelist)
	verifier := accesscontrol.AnyOf{whitelist, signed}

	f, err := deployer.Deploy(factory.Config{
		Owner:               common.HexToAddress(fc.Owner),
		RescueDelay:         fc.RescueDelay,
		CancelSkewTolerance: skew,
	}, hostLedger, whitelist, verifier)
	if err != nil {
		log.Fatal("deploy factory failed", "err", err)
	}
	theFactory = f

	log.Info("start engine success", "chainID", chainID, "factory", f.Address(),
		"owner", f.Owner(), "rescueDelay", f.RescueDelay(), "whitelist", len(members), "bypass", ac.Bypass)
}

// GetLedger returns the node's host ledger.
func GetLedger() *ledger.State {
	return hostLedger
}

// GetFactory returns the node's escrow factory.
func GetFactory() *factory.Factory {
	return theFactory
}

// GetEscrow looks up a deployed escrow by immutables hash.
func GetEscrow(immutablesHash common.Hash) (*escrow.Escrow, error) {
	return theFactory.GetEscrow(immutablesHash)
}
