package params

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/pkg/errors"
)

// escrow swap constants
const (
	EscrowSwapPrefixID = "escrowswap"
)

var (
	escrowConfig = &EscrowConfig{}
	locDataDir   string
)

// EscrowConfig is the top level node config.
type EscrowConfig struct {
	Identifier string
	ChainID    string
	Admins     []string `toml:",omitempty" json:",omitempty"`

	Factory       *FactoryConfig
	AccessControl *AccessControlConfig
	APIServer     *APIServerConfig `toml:",omitempty" json:",omitempty"`
}

// FactoryConfig is the escrow factory deployment policy.
type FactoryConfig struct {
	Owner               string
	DeployerAddress     string
	DeploySalt          string
	RescueDelay         uint64 // seconds
	CancelSkewTolerance uint64 `toml:",omitempty" json:",omitempty"` // seconds
}

// AccessControlConfig configures the admission paths of public
// transitions and destination escrow creation.
type AccessControlConfig struct {
	Whitelist []string `toml:",omitempty" json:",omitempty"`
	Bypass    bool     `toml:",omitempty" json:",omitempty"`

	// typed data domain of the signed authorization path
	SignerDomainName    string `toml:",omitempty" json:",omitempty"`
	SignerDomainVersion string `toml:",omitempty" json:",omitempty"`
}

// APIServerConfig api service config
type APIServerConfig struct {
	Port             int
	AllowedOrigins   []string
	MaxRequestsLimit int `toml:",omitempty" json:",omitempty"`
}

// GetConfig returns the loaded config.
func GetConfig() *EscrowConfig {
	return escrowConfig
}

// SetConfig sets the loaded config, used by tests.
func SetConfig(config *EscrowConfig) {
	escrowConfig = config
}

// SetDataDir sets the data directory.
func SetDataDir(datadir string) {
	if datadir == "" {
		return
	}
	locDataDir = datadir
}

// GetDataDir returns the data directory.
func GetDataDir() string {
	return locDataDir
}

// GetChainID returns the configured ledger chain id.
func GetChainID() *big.Int {
	chainID, err := common.GetBigIntFromStr(escrowConfig.ChainID)
	if err != nil {
		log.Fatalf("wrong chain id '%v'", escrowConfig.ChainID)
	}
	return chainID
}

// HasAdmin returns true if at least one admin address is configured.
func HasAdmin() bool {
	return len(escrowConfig.Admins) != 0
}

// IsAdmin returns true if addr is a configured admin address.
func IsAdmin(addr string) bool {
	for _, admin := range escrowConfig.Admins {
		if strings.EqualFold(addr, admin) {
			return true
		}
	}
	return false
}

// LoadEscrowConfig loads the toml config file and checks it.
func LoadEscrowConfig(configFile string, check bool) *EscrowConfig {
	config, err := loadEscrowConfig(configFile, check)
	if err != nil {
		log.Fatalf("load config error: %v", err)
	}
	return config
}

func loadEscrowConfig(configFile string, check bool) (config *EscrowConfig, err error) {
	log.Println("load config file", configFile)
	if !common.FileExist(configFile) {
		return nil, errors.Errorf("config file '%v' not exist", configFile)
	}
	config = &EscrowConfig{}
	if _, err = toml.DecodeFile(configFile, &config); err != nil {
		return nil, errors.Wrap(err, "toml.DecodeFile error")
	}

	if check {
		if err = config.CheckConfig(); err != nil {
			log.Warnf("check config failed. %v", err)
			return nil, err
		}
	}

	escrowConfig = config

	var bs []byte
	if log.JSONFormat {
		bs, _ = json.Marshal(config)
	} else {
		bs, _ = json.MarshalIndent(config, "", "  ")
	}
	log.Println("load config finished.", string(bs))
	return config, nil
}

// ReloadEscrowConfig reloads the config file in place, used by the
// config watcher. A broken edit keeps the old config.
func ReloadEscrowConfig(configFile string) {
	if _, err := loadEscrowConfig(configFile, true); err != nil {
		log.Error("reload config failed, keep old config", "configFile", configFile, "err", err)
	}
}
