package escrow

import (
	"errors"
	"math/big"
	"testing"

	"github.com/crosslock/CrossChain-Escrow/common"
)

func validImmutables() *Immutables {
	var secret [SecretLength]byte
	copy(secret[:], []byte("the quick brown fox jumps over"))
	return &Immutables{
		OrderHash:     common.Keccak256Hash([]byte("order-1")),
		Hashlock:      HashSecret(secret),
		Maker:         common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Taker:         common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Asset:         NativeAsset,
		Amount:        big.NewInt(1_000_000),
		SafetyDeposit: big.NewInt(50_000),
		Timelocks:     validTimelocks(),
	}
}

func TestImmutablesValidate(t *testing.T) {
	if err := validImmutables().Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	cases := []struct {
		desc   string
		mutate func(*Immutables)
	}{
		{"empty hashlock", func(im *Immutables) { im.Hashlock = common.Hash{} }},
		{"empty maker", func(im *Immutables) { im.Maker = common.Address{} }},
		{"empty taker", func(im *Immutables) { im.Taker = common.Address{} }},
		{"nil amount", func(im *Immutables) { im.Amount = nil }},
		{"zero amount", func(im *Immutables) { im.Amount = big.NewInt(0) }},
		{"negative deposit", func(im *Immutables) { im.SafetyDeposit = big.NewInt(-1) }},
	}
	for _, c := range cases {
		im := validImmutables()
		c.mutate(im)
		err := im.Validate()
		if !errors.Is(err, ErrInvalidParameters) {
			t.Fatalf("%s: expected ErrInvalidParameters, got %v", c.desc, err)
		}
	}
}

func TestImmutablesHashDeterministic(t *testing.T) {
	a := validImmutables()
	b := validImmutables()
	if a.Hash() != b.Hash() {
		t.Fatal("equal immutables must hash equal")
	}
}

func TestImmutablesHashDistinct(t *testing.T) {
	base := validImmutables().Hash()
	cases := []struct {
		desc   string
		mutate func(*Immutables)
	}{
		{"order hash", func(im *Immutables) { im.OrderHash = common.Keccak256Hash([]byte("order-2")) }},
		{"hashlock", func(im *Immutables) { im.Hashlock = common.Keccak256Hash([]byte("other")) }},
		{"maker", func(im *Immutables) { im.Maker = common.HexToAddress("0x3333333333333333333333333333333333333333") }},
		{"amount", func(im *Immutables) { im.Amount = big.NewInt(2_000_000) }},
		{"deposit", func(im *Immutables) { im.SafetyDeposit = big.NewInt(1) }},
		{"schedule", func(im *Immutables) { im.Timelocks.SrcWithdrawal = 11 }},
		{"parameters", func(im *Immutables) { im.Parameters = []byte{0x01} }},
	}
	for _, c := range cases {
		im := validImmutables()
		c.mutate(im)
		if im.Hash() == base {
			t.Fatalf("%s: mutation did not change the hash", c.desc)
		}
	}
}

func TestImmutablesHashIgnoresAnchor(t *testing.T) {
	a := validImmutables()
	b := validImmutables()
	b.Timelocks = b.Timelocks.WithDeployedAt(1700000000)
	if a.Hash() != b.Hash() {
		t.Fatal("anchor must not change the content hash")
	}
}

func TestDerivedAddressDeterministic(t *testing.T) {
	factory := common.HexToAddress("0x4444444444444444444444444444444444444444")
	fingerprint := common.Keccak256Hash([]byte("impl"))
	salt := validImmutables().Hash()

	addr := DerivedAddress(factory, fingerprint, salt)
	if addr != DerivedAddress(factory, fingerprint, salt) {
		t.Fatal("derivation must be deterministic")
	}
	if addr == DerivedAddress(factory, common.Keccak256Hash([]byte("impl2")), salt) {
		t.Fatal("fingerprint must change the address")
	}
	if addr == DerivedAddress(common.HexToAddress("0x5555555555555555555555555555555555555555"), fingerprint, salt) {
		t.Fatal("factory must change the address")
	}
}
