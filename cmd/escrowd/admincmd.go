package main

import (
	"fmt"
	"strconv"

	"github.com/crosslock/CrossChain-Escrow/admin"
	"github.com/crosslock/CrossChain-Escrow/cmd/utils"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/log"
	"github.com/urfave/cli/v2"
)

var (
	adminCommand = &cli.Command{
		Name:  "admin",
		Usage: "admin escrow factory",
		Flags: append(admin.CommonFlags, utils.CommonLogFlags...),
		Description: `
admin escrow factory
`,
		Subcommands: []*cli.Command{
			{
				Name:      "setwhitelist",
				Usage:     "add or remove a whitelist member",
				Action:    setwhitelist,
				ArgsUsage: "<address> <true|false>",
				Description: `
add or remove a whitelist member
`,
			},
			{
				Name:      "setbypass",
				Usage:     "toggle permissionless operation",
				Action:    setbypass,
				ArgsUsage: "<true|false>",
				Description: `
toggle the whitelist bypass flag
`,
			},
			{
				Name:   "pause",
				Usage:  "pause escrow creation",
				Action: pause,
				Description: `
pause escrow creation, existing escrows keep operating
`,
			},
			{
				Name:   "unpause",
				Usage:  "resume escrow creation",
				Action: unpause,
				Description: `
resume escrow creation
`,
			},
		},
	}
)

func setwhitelist(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	method := "setwhitelist"
	err := admin.Prepare(ctx)
	if err != nil {
		return err
	}
	if ctx.NArg() < 2 {
		return fmt.Errorf("miss required position argument")
	}
	addr := ctx.Args().Get(0)
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("wrong address '%v'", addr)
	}
	flag := ctx.Args().Get(1)
	if _, err = strconv.ParseBool(flag); err != nil {
		return fmt.Errorf("wrong whitelist flag '%v'", flag)
	}

	log.Printf("%v: %v %v", method, addr, flag)

	params := []string{addr, flag}
	result, err := admin.EscrowAdmin(method, params)

	log.Printf("result is '%v'", result)
	return err
}

func setbypass(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	method := "setbypass"
	err := admin.Prepare(ctx)
	if err != nil {
		return err
	}
	if ctx.NArg() < 1 {
		return fmt.Errorf("miss required position argument")
	}
	flag := ctx.Args().Get(0)
	if _, err = strconv.ParseBool(flag); err != nil {
		return fmt.Errorf("wrong bypass flag '%v'", flag)
	}

	log.Printf("%v: %v", method, flag)

	params := []string{flag}
	result, err := admin.EscrowAdmin(method, params)

	log.Printf("result is '%v'", result)
	return err
}

func pause(ctx *cli.Context) error {
	return setPaused(ctx, "pause")
}

func unpause(ctx *cli.Context) error {
	return setPaused(ctx, "unpause")
}

func setPaused(ctx *cli.Context, method string) error {
	utils.SetLogger(ctx)
	err := admin.Prepare(ctx)
	if err != nil {
		return err
	}

	log.Printf("%v", method)

	result, err := admin.EscrowAdmin(method, []string{})

	log.Printf("result is '%v'", result)
	return err
}
