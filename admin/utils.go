package admin

import (
	"errors"

	"github.com/crosslock/CrossChain-Escrow/cmd/utils"
	"github.com/crosslock/CrossChain-Escrow/rpc/client"
	"github.com/urfave/cli/v2"
)

// common flags
var (
	escrowServer string

	CommonFlags = []cli.Flag{
		utils.EscrowServerFlag,
		utils.KeystoreFileFlag,
		utils.PasswordFileFlag,
	}
)

// EscrowAdmin rpc call server `escrow.AdminCall`
func EscrowAdmin(method string, params []string) (result interface{}, err error) {
	rawTx, err := Sign(method, params)
	if err != nil {
		return "", err
	}
	timeout := 300
	reqID := 1010
	err = client.RPCPostWithTimeoutAndID(&result, timeout, reqID, escrowServer, "escrow.AdminCall", rawTx)
	return result, err
}

// Prepare loads the signing keystore and the server address from the
// command line flags.
func Prepare(ctx *cli.Context) error {
	keyfile := ctx.String(utils.KeystoreFileFlag.Name)
	passfile := ctx.String(utils.PasswordFileFlag.Name)
	if err := LoadKeyStore(keyfile, passfile); err != nil {
		return err
	}
	escrowServer = ctx.String(utils.EscrowServerFlag.Name)
	if escrowServer == "" {
		return errors.New("must specify server")
	}
	return nil
}
