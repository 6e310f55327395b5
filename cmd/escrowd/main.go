// Command escrowd is main program to start the escrow node or its sub
// commands.
package main

import (
	"fmt"
	"os"

	"github.com/crosslock/CrossChain-Escrow/cmd/utils"
	"github.com/crosslock/CrossChain-Escrow/engine"
	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/crosslock/CrossChain-Escrow/params"
	rpcserver "github.com/crosslock/CrossChain-Escrow/rpc/server"
	"github.com/urfave/cli/v2"
)

var (
	clientIdentifier = "escrowd"
	// Git SHA1 commit hash of the release (set via linker flags)
	gitCommit = ""
	gitDate   = ""
	// The app that holds all commands and flags.
	app = utils.NewApp(clientIdentifier, gitCommit, gitDate, "the escrowd command line interface")
)

func initApp() {
	// Initialize the CLI app and start action
	app.Action = escrowd
	app.HideVersion = true // we have a command to print the version
	app.Commands = []*cli.Command{
		adminCommand,
		configCommand,
		toolsCommand,
		utils.VersionCommand,
	}
	app.Flags = []cli.Flag{
		utils.DataDirFlag,
		utils.ConfigFileFlag,
		utils.LogFileFlag,
		utils.LogRotationFlag,
		utils.LogMaxAgeFlag,
		utils.VerbosityFlag,
		utils.JSONFormatFlag,
		utils.ColorFormatFlag,
	}
}

func main() {
	initApp()
	if err := app.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func escrowd(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() > 0 {
		return fmt.Errorf("invalid command: %q", ctx.Args().Get(0))
	}

	params.SetDataDir(utils.GetDataDir(ctx))
	configFile := utils.GetConfigFilePath(ctx)
	config := params.LoadEscrowConfig(configFile, true)
	params.WatchConfig(configFile)

	engine.StartEngine()

	if config.APIServer != nil {
		rpcserver.StartAPIServer()
	}

	utils.TopWaitGroup.Wait()
	return nil
}
