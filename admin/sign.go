// Package admin implements the signed admin call envelope: the command
// line tool signs a method call with a keystore key, the server
// recovers the sender and checks it against the configured admins.
package admin

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crosslock/CrossChain-Escrow/common"
	"github.com/crosslock/CrossChain-Escrow/common/hexutil"
	"github.com/crosslock/CrossChain-Escrow/tools"
	"github.com/crosslock/CrossChain-Escrow/tools/crypto"
)

// max admin call age, stale signed calls are rejected
const maxCallAge = 300 // seconds

var signKey *ecdsa.PrivateKey

// CallArgs is the signed payload of one admin call.
type CallArgs struct {
	Method    string   `json:"method"`
	Params    []string `json:"params"`
	Timestamp int64    `json:"timestamp"`
}

// signedCall is the wire envelope.
type signedCall struct {
	Args      *CallArgs     `json:"args"`
	Signature hexutil.Bytes `json:"signature"`
}

// LoadKeyStore load the signing key from keystore and password file.
func LoadKeyStore(keyfile, passfile string) error {
	key, err := tools.LoadKeyStore(keyfile, passfile)
	if err != nil {
		return err
	}
	signKey = key.PrivateKey
	return nil
}

func callDigest(args *CallArgs) ([]byte, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal admin call error: %w", err)
	}
	return common.Keccak256(data), nil
}

// Sign signs an admin call with the loaded keystore key and returns the
// hex encoded envelope.
func Sign(method string, params []string) (string, error) {
	if signKey == nil {
		return "", fmt.Errorf("admin sign key is not loaded")
	}
	args := &CallArgs{
		Method:    method,
		Params:    params,
		Timestamp: time.Now().Unix(),
	}
	digest, err := callDigest(args)
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(digest, signKey)
	if err != nil {
		return "", fmt.Errorf("sign admin call error: %w", err)
	}
	return encodeSignedCall(args, sig)
}

func encodeSignedCall(args *CallArgs, sig []byte) (string, error) {
	envelope, err := json.Marshal(&signedCall{Args: args, Signature: sig})
	if err != nil {
		return "", err
	}
	return hexutil.Encode(envelope), nil
}

// DecodeCall decodes a hex envelope without verifying it.
func DecodeCall(raw string) (*CallArgs, []byte, error) {
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode admin call error: %w", err)
	}
	var env signedCall
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("unmarshal admin call error: %w", err)
	}
	if env.Args == nil {
		return nil, nil, fmt.Errorf("admin call without args")
	}
	return env.Args, env.Signature, nil
}

// VerifyCall decodes a hex envelope, checks freshness and recovers the
// signer address.
func VerifyCall(raw string) (common.Address, *CallArgs, error) {
	args, sig, err := DecodeCall(raw)
	if err != nil {
		return common.Address{}, nil, err
	}
	now := time.Now().Unix()
	if args.Timestamp > now+maxCallAge || args.Timestamp < now-maxCallAge {
		return common.Address{}, nil, fmt.Errorf("stale admin call, signed at %v", args.Timestamp)
	}
	digest, err := callDigest(args)
	if err != nil {
		return common.Address{}, nil, err
	}
	sender, err := crypto.SigToAddress(digest, sig)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("recover admin call sender error: %w", err)
	}
	return sender, args, nil
}
