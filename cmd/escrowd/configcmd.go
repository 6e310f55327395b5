package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/crosslock/CrossChain-Escrow/cmd/utils"
	"github.com/crosslock/CrossChain-Escrow/params"
	"github.com/nsf/jsondiff"
	"github.com/urfave/cli/v2"
)

var (
	configCommand = &cli.Command{
		Name:  "config",
		Usage: "config escrow node",
		Description: `
config escrow node
`,
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "check config file",
				Action:    checkConfig,
				ArgsUsage: "<configFile>",
				Flags:     utils.CommonLogFlags,
			},
			{
				Name:      "diff",
				Usage:     "diff two config files",
				Action:    diffConfig,
				ArgsUsage: "<configFileA> <configFileB>",
				Flags:     utils.CommonLogFlags,
			},
		},
	}
)

func checkConfig(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() < 1 {
		return fmt.Errorf("miss required position argument")
	}
	configFile := ctx.Args().Get(0)
	config := params.LoadEscrowConfig(configFile, true)
	jsdata, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("config is", string(jsdata))
	return nil
}

func diffConfig(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() < 2 {
		return fmt.Errorf("miss required position argument")
	}
	configA := params.LoadEscrowConfig(ctx.Args().Get(0), false)
	configB := params.LoadEscrowConfig(ctx.Args().Get(1), false)
	jsA, err := json.Marshal(configA)
	if err != nil {
		return err
	}
	jsB, err := json.Marshal(configB)
	if err != nil {
		return err
	}
	opts := jsondiff.DefaultConsoleOptions()
	diff, text := jsondiff.Compare(jsA, jsB, &opts)
	fmt.Println("diff result is", diff)
	fmt.Println(text)
	if diff != jsondiff.FullMatch {
		os.Exit(1)
	}
	return nil
}
