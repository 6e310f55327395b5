package params

import (
	"fmt"
	"strings"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/pkg/errors"
)

// CheckConfig checks the escrow node config.
func (config *EscrowConfig) CheckConfig() (err error) {
	if !strings.HasPrefix(config.Identifier, EscrowSwapPrefixID) || config.Identifier == EscrowSwapPrefixID {
		return fmt.Errorf("wrong identifier '%v', missing prefix '%v'", config.Identifier, EscrowSwapPrefixID)
	}
	if _, err = common.GetBigIntFromStr(config.ChainID); err != nil {
		return fmt.Errorf("wrong chain id '%v'", config.ChainID)
	}
	log.Info("check identifier pass", "identifier", config.Identifier, "chainID", config.ChainID)

	for _, admin := range config.Admins {
		if !common.IsHexAddress(admin) {
			return fmt.Errorf("wrong admin address '%v'", admin)
		}
	}

	if config.Factory == nil {
		return errors.New("must config 'Factory'")
	}
	if err = config.Factory.CheckConfig(); err != nil {
		return err
	}

	if config.AccessControl == nil {
		return errors.New("must config 'AccessControl'")
	}
	if err = config.AccessControl.CheckConfig(); err != nil {
		return err
	}

	if config.APIServer != nil {
		if err = config.APIServer.CheckConfig(); err != nil {
			return err
		}
	}
	return nil
}

// CheckConfig checks the factory config.
func (config *FactoryConfig) CheckConfig() error {
	if !common.IsHexAddress(config.Owner) {
		return fmt.Errorf("wrong factory owner '%v'", config.Owner)
	}
	if !common.IsHexAddress(config.DeployerAddress) {
		return fmt.Errorf("wrong factory deployer address '%v'", config.DeployerAddress)
	}
	if config.DeploySalt == "" {
		return errors.New("must config factory 'DeploySalt'")
	}
	if config.RescueDelay == 0 {
		return errors.New("must config non-zero factory 'RescueDelay'")
	}
	log.Info("check factory config pass", "owner", config.Owner, "rescueDelay", config.RescueDelay, "cancelSkewTolerance", config.CancelSkewTolerance)
	return nil
}

// CheckConfig checks the access control config.
func (config *AccessControlConfig) CheckConfig() error {
	if len(config.Whitelist) == 0 && !config.Bypass {
		return errors.New("must config 'Whitelist' members or enable 'Bypass'")
	}
	for _, member := range config.Whitelist {
		if !common.IsHexAddress(member) {
			return fmt.Errorf("wrong whitelist member '%v'", member)
		}
	}
	if config.SignerDomainName != "" && config.SignerDomainVersion == "" {
		return errors.New("must config 'SignerDomainVersion' with 'SignerDomainName'")
	}
	log.Info("check access control config pass", "members", len(config.Whitelist), "bypass", config.Bypass)
	return nil
}

// CheckConfig checks the api server config.
func (config *APIServerConfig) CheckConfig() error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("wrong api server port '%v'", config.Port)
	}
	return nil
}
