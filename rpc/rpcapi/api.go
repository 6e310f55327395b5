package rpcapi

import (
	"net/http"

	"github.com/crosslock/CrossChain-Escrow/internal/swapapi"
	"github.com/crosslock/CrossChain-Escrow/params"
)

// EscrowAPI rpc api handler
type EscrowAPI struct{}

// RPCNullArgs null args
type RPCNullArgs struct{}

// EscrowKeyArgs args
type EscrowKeyArgs struct {
	ImmutablesHash string `json:"immutablesHash"`
}

// GetVersionInfo api
func (s *EscrowAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *string) error {
	version := params.VersionWithMeta
	*result = version
	return nil
}

// GetServerInfo api
func (s *EscrowAPI) GetServerInfo(r *http.Request, args *RPCNullArgs, result *swapapi.ServerInfo) error {
	serverInfo := swapapi.GetServerInfo()
	*result = *serverInfo
	return nil
}

// GetFactoryInfo api
func (s *EscrowAPI) GetFactoryInfo(r *http.Request, args *RPCNullArgs, result *swapapi.FactoryInfo) error {
	factoryInfo := swapapi.GetFactoryInfo()
	*result = *factoryInfo
	return nil
}

// GetEscrowInfo api
func (s *EscrowAPI) GetEscrowInfo(r *http.Request, args *EscrowKeyArgs, result *swapapi.EscrowInfo) error {
	res, err := swapapi.GetEscrowInfo(args.ImmutablesHash)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// PredictAddressArgs args
type PredictAddressArgs struct {
	ImmutablesHash string `json:"immutablesHash"`
	Role           string `json:"role"`
}

// PredictAddress api
func (s *EscrowAPI) PredictAddress(r *http.Request, args *PredictAddressArgs, result *string) error {
	res, err := swapapi.PredictAddress(args.ImmutablesHash, args.Role)
	if err == nil {
		*result = res
	}
	return err
}

// AddressArgs args
type AddressArgs struct {
	Address string `json:"address"`
}

// IsWhitelisted api
func (s *EscrowAPI) IsWhitelisted(r *http.Request, args *AddressArgs, result *bool) error {
	res, err := swapapi.IsWhitelisted(args.Address)
	if err == nil {
		*result = res
	}
	return err
}

// OrderArgs args
type OrderArgs struct {
	OrderHash string `json:"orderHash"`
}

// GetOrderEvents api
func (s *EscrowAPI) GetOrderEvents(r *http.Request, args *OrderArgs, result *[]*swapapi.EventInfo) error {
	res, err := swapapi.GetOrderEvents(args.OrderHash)
	if err == nil && res != nil {
		*result = res
	}
	return err
}
