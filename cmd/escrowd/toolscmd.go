package main

import (
	"crypto/rand"
	"fmt"
	"strconv"

	"github.com/crosslock/CrossChain-Escrow/cmd/utils"
	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/escrow"
	"github.com/crosslock/CrossChain-Escrow/escrow/factory"
	"github.com/crosslock/CrossChain-Escrow/escrow/partialfill"
	"github.com/urfave/cli/v2"
)

var (
	toolsCommand = &cli.Command{
		Name:  "tools",
		Usage: "useful tools",
		Flags: utils.CommonLogFlags,
		Description: `
useful tools
`,
		Subcommands: []*cli.Command{
			{
				Name:   "gensecret",
				Usage:  "generate a swap secret and its hashlock",
				Action: genSecret,
			},
			{
				Name:      "keccak256",
				Usage:     "calc keccak256 hash",
				Action:    keccak256Hash,
				ArgsUsage: "[message]",
				Flags:     []cli.Flag{messageFlag, isHexFlag},
			},
			{
				Name:      "predictaddr",
				Usage:     "predict escrow address",
				Action:    predictAddr,
				ArgsUsage: "<factoryAddress> <immutablesHash>",
				Flags:     []cli.Flag{roleFlag},
			},
			{
				Name:      "packtimelocks",
				Usage:     "pack a timelock schedule into its word form",
				Action:    packTimelocks,
				ArgsUsage: "<anchor> <srcW> <srcPW> <srcC> <srcPC> <dstW> <dstPW> <dstC>",
			},
			{
				Name:      "unpacktimelocks",
				Usage:     "unpack a timelock word into its schedule",
				Action:    unpackTimelocks,
				ArgsUsage: "<packedWord>",
			},
			{
				Name:      "merkleroot",
				Usage:     "calc the partial fill commitment of secret hashes",
				Action:    merkleRoot,
				ArgsUsage: "<secretHash>...",
			},
			{
				Name:      "merkleproof",
				Usage:     "calc the membership proof of one secret hash",
				Action:    merkleProof,
				ArgsUsage: "<index> <secretHash>...",
			},
		},
	}

	messageFlag = &cli.StringFlag{
		Name:    "message",
		Aliases: []string{"m"},
		Usage:   "message text",
	}

	isHexFlag = &cli.BoolFlag{
		Name:  "hex",
		Usage: "from hex string",
	}

	roleFlag = &cli.StringFlag{
		Name:  "role",
		Usage: "escrow role, 'src' or 'dst'",
		Value: "src",
	}
)

func getMessage(ctx *cli.Context) (string, error) {
	if ctx.NArg() > 1 {
		return "", fmt.Errorf("has more than one position argument: %v", ctx.Args())
	}
	var message string
	if ctx.NArg() == 1 {
		message = ctx.Args().Get(0) // positional args first
	} else {
		message = ctx.String(messageFlag.Name)
	}
	fmt.Printf("the message is '%v'\n", message)
	return message, nil
}

func genSecret(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	var secret [escrow.SecretLength]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return fmt.Errorf("read random error: '%v'", err)
	}
	fmt.Printf("secret is '%v'\n", common.ToHex(secret[:]))
	fmt.Printf("hashlock is '%v'\n", escrow.HashSecret(secret).Hex())
	return nil
}

func keccak256Hash(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	message, err := getMessage(ctx)
	if err != nil {
		return err
	}
	var data []byte
	if ctx.Bool(isHexFlag.Name) {
		data = common.FromHex(message)
	} else {
		data = []byte(message)
	}
	fmt.Printf("keccak256 hash is '%v'\n", common.Keccak256Hash(data).Hex())
	return nil
}

func predictAddr(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() < 2 {
		return fmt.Errorf("miss required position argument")
	}
	factoryAddr := ctx.Args().Get(0)
	if !common.IsHexAddress(factoryAddr) {
		return fmt.Errorf("wrong factory address '%v'", factoryAddr)
	}
	immutablesHash := ctx.Args().Get(1)
	if !common.IsHexHash(immutablesHash) {
		return fmt.Errorf("wrong immutables hash '%v'", immutablesHash)
	}
	fingerprint := factory.SrcImplFingerprint
	if ctx.String(roleFlag.Name) == "dst" {
		fingerprint = factory.DstImplFingerprint
	}
	addr := escrow.DerivedAddress(common.HexToAddress(factoryAddr), fingerprint, common.HexToHash(immutablesHash))
	fmt.Printf("escrow address is '%v'\n", addr.Hex())
	return nil
}

func getUint32Argument(ctx *cli.Context, pos int) (uint32, error) {
	str := ctx.Args().Get(pos)
	val, err := strconv.ParseUint(str, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("wrong number argument '%v'", str)
	}
	return uint32(val), nil
}

func packTimelocks(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() < 8 {
		return fmt.Errorf("miss required position argument")
	}
	vals := make([]uint32, 8)
	for i := 0; i < 8; i++ {
		v, err := getUint32Argument(ctx, i)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	tl := escrow.Timelocks{
		DeployedAt:            vals[0],
		SrcWithdrawal:         vals[1],
		SrcPublicWithdrawal:   vals[2],
		SrcCancellation:       vals[3],
		SrcPublicCancellation: vals[4],
		DstWithdrawal:         vals[5],
		DstPublicWithdrawal:   vals[6],
		DstCancellation:       vals[7],
	}
	if err := tl.Validate(); err != nil {
		return err
	}
	packed := tl.Pack()
	fmt.Printf("packed timelocks word is '%v'\n", common.ToHex(packed[:]))
	return nil
}

func unpackTimelocks(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() < 1 {
		return fmt.Errorf("miss required position argument")
	}
	wordStr := ctx.Args().Get(0)
	if !common.IsHexHash(wordStr) {
		return fmt.Errorf("wrong packed word '%v'", wordStr)
	}
	var word [32]byte
	copy(word[:], common.FromHex(wordStr))
	tl := escrow.UnpackTimelocks(word)
	fmt.Printf("deployedAt is %v\n", tl.DeployedAt)
	for stage := escrow.StageSrcWithdrawal; stage <= escrow.StageDstCancellation; stage++ {
		fmt.Printf("%v opens at %v\n", stage, tl.Get(stage))
	}
	return nil
}

func getLeavesArguments(ctx *cli.Context, startPos int) ([]common.Hash, error) {
	if ctx.NArg() <= startPos {
		return nil, fmt.Errorf("miss required position argument")
	}
	leaves := make([]common.Hash, 0, ctx.NArg()-startPos)
	for i := startPos; i < ctx.NArg(); i++ {
		hashStr := ctx.Args().Get(i)
		if !common.IsHexHash(hashStr) {
			return nil, fmt.Errorf("wrong secret hash '%v'", hashStr)
		}
		index := uint32(i - startPos + 1) // leaf indices are 1-based
		leaves = append(leaves, partialfill.Leaf(index, common.HexToHash(hashStr)))
	}
	return leaves, nil
}

func merkleRoot(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	leaves, err := getLeavesArguments(ctx, 0)
	if err != nil {
		return err
	}
	fmt.Printf("merkle root is '%v'\n", partialfill.Root(leaves).Hex())
	return nil
}

func merkleProof(ctx *cli.Context) error {
	utils.SetLogger(ctx)
	if ctx.NArg() < 2 {
		return fmt.Errorf("miss required position argument")
	}
	index, err := getUint32Argument(ctx, 0)
	if err != nil {
		return err
	}
	leaves, err := getLeavesArguments(ctx, 1)
	if err != nil {
		return err
	}
	if index == 0 || int(index) > len(leaves) {
		return fmt.Errorf("index %v out of range 1..%v", index, len(leaves))
	}
	proof := partialfill.Proof(leaves, int(index-1))
	fmt.Printf("merkle root is '%v'\n", partialfill.Root(leaves).Hex())
	for _, node := range proof {
		fmt.Printf("proof node '%v'\n", node.Hex())
	}
	return nil
}
