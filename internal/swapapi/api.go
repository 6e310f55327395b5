package swapapi

import (
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/engine"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/crosslock/CrossChain-Escrow/params"
	rpcjson "github.com/gorilla/rpc/v2/json2"
)

func newRPCError(ec rpcjson.ErrorCode, message string) error {
	return &rpcjson.Error{
		Code:    ec,
		Message: message,
	}
}

func newRPCInternalError(err error) error {
	return newRPCError(-32000, "rpcError: "+err.Error())
}

// GetServerInfo get server info
func GetServerInfo() *ServerInfo {
	config := params.GetConfig()
	return &ServerInfo{
		Identifier: config.Identifier,
		Version:    params.VersionWithMeta,
		ChainID:    config.ChainID,
		Factory:    engine.GetFactory().Address().Hex(),
	}
}

// GetFactoryInfo get factory info
func GetFactoryInfo() *FactoryInfo {
	f := engine.GetFactory()
	return &FactoryInfo{
		Address:             f.Address().Hex(),
		Owner:               f.Owner().Hex(),
		Paused:              f.Paused(),
		Bypass:              f.Whitelist().Bypass(),
		RescueDelay:         f.RescueDelay(),
		CancelSkewTolerance: f.CancelSkewTolerance(),
		DeployedCount:       f.DeployedCount(),
	}
}

// GetEscrowInfo get escrow info by immutables hash
func GetEscrowInfo(immutablesHash string) (*EscrowInfo, error) {
	if !common.IsHexHash(immutablesHash) {
		return nil, newRPCError(-32099, "wrong immutables hash")
	}
	esc, err := engine.GetEscrow(common.HexToHash(immutablesHash))
	if err != nil {
		return nil, newRPCInternalError(err)
	}
	return ConvertEscrowToEscrowInfo(esc), nil
}

// PredictAddress predict the escrow address of an immutables hash
func PredictAddress(immutablesHash, role string) (string, error) {
	if !common.IsHexHash(immutablesHash) {
		return "", newRPCError(-32099, "wrong immutables hash")
	}
	var r escrow.Role
	switch role {
	case "src", "":
		r = escrow.RoleSrc
	case "dst":
		r = escrow.RoleDst
	default:
		return "", newRPCError(-32099, "wrong role, want 'src' or 'dst'")
	}
	addr := engine.GetFactory().PredictAddress(common.HexToHash(immutablesHash), r)
	return addr.Hex(), nil
}

// IsWhitelisted get whitelist membership of an address
func IsWhitelisted(address string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, newRPCError(-32099, "wrong address")
	}
	return engine.GetFactory().Whitelist().IsWhitelisted(common.HexToAddress(address)), nil
}

// GetOrderEvents get the journal entries of one order
func GetOrderEvents(orderHash string) ([]*EventInfo, error) {
	if !common.IsHexHash(orderHash) {
		return nil, newRPCError(-32099, "wrong order hash")
	}
	evs := engine.GetLedger().EventsByOrder(common.HexToHash(orderHash))
	log.Debug("[api] get order events", "orderHash", orderHash, "count", len(evs))
	return ConvertEventsToEventInfos(evs), nil
}
