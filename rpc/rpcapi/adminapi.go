package rpcapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/crosslock/CrossChain-Escrow/admin"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/engine"
	"github.com/crosslock/CrossChain-Escrow/params"
)

const (
	setWhitelistCmd = "setwhitelist"
	setBypassCmd    = "setbypass"
	pauseCmd        = "pause"
	unpauseCmd      = "unpause"

	successResult = "Success"
)

// AdminCall admin call
func (s *EscrowAPI) AdminCall(r *http.Request, rawTx, result *string) (err error) {
	if !params.HasAdmin() {
		return fmt.Errorf("no admin is configed")
	}
	sender, args, err := admin.VerifyCall(*rawTx)
	if err != nil {
		return err
	}
	if !params.IsAdmin(sender.Hex()) {
		return fmt.Errorf("sender %v is not admin", sender.Hex())
	}
	return doAdminCall(args, result)
}

func doAdminCall(args *admin.CallArgs, result *string) error {
	switch args.Method {
	case setWhitelistCmd:
		return adminSetWhitelist(args, result)
	case setBypassCmd:
		return adminSetBypass(args, result)
	case pauseCmd:
		return adminSetPaused(args, result, true)
	case unpauseCmd:
		return adminSetPaused(args, result, false)
	default:
		return fmt.Errorf("unknown admin method '%v'", args.Method)
	}
}

func adminSetWhitelist(args *admin.CallArgs, result *string) error {
	if len(args.Params) != 2 {
		return fmt.Errorf("wrong number of params, have %v want 2", len(args.Params))
	}
	addr := args.Params[0]
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("wrong address '%v'", addr)
	}
	flag, err := strconv.ParseBool(args.Params[1])
	if err != nil {
		return fmt.Errorf("wrong whitelist flag '%v'", args.Params[1])
	}
	f := engine.GetFactory()
	if err := f.SetWhitelisted(f.Owner(), common.HexToAddress(addr), flag); err != nil {
		return err
	}
	*result = successResult
	return nil
}

func adminSetBypass(args *admin.CallArgs, result *string) error {
	if len(args.Params) != 1 {
		return fmt.Errorf("wrong number of params, have %v want 1", len(args.Params))
	}
	flag, err := strconv.ParseBool(args.Params[0])
	if err != nil {
		return fmt.Errorf("wrong bypass flag '%v'", args.Params[0])
	}
	f := engine.GetFactory()
	if err := f.SetBypass(f.Owner(), flag); err != nil {
		return err
	}
	*result = successResult
	return nil
}

func adminSetPaused(args *admin.CallArgs, result *string, paused bool) error {
	if len(args.Params) != 0 {
		return fmt.Errorf("wrong number of params, have %v want 0", len(args.Params))
	}
	f := engine.GetFactory()
	var err error
	if paused {
		err = f.Pause(f.Owner())
	} else {
		err = f.Unpause(f.Owner())
	}
	if err != nil {
		return err
	}
	*result = successResult
	return nil
}
