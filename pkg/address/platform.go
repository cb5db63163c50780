package address

import (
	"github.com/btcsuite/btcutil/bech32"

	"github.com/suffix-labs/shardtx/pkg/crypto"
	"github.com/suffix-labs/shardtx/pkg/types"
)

// PlatformAddressVersion is the version byte prepended to the account id.
const PlatformAddressVersion byte = 1

// PlatformAddress identifies an account on a network.
//
// Its text form is bech32 with human-readable part "<network id>c" and data
// version || account id, e.g. "ccc1q..." on mainnet.
type PlatformAddress struct {
	NetworkID types.NetworkID // Network the address belongs to
	AccountID types.H160      // BLAKE2b-160 of the account's public key
}

// FromAccountID builds an address for an account id.
func FromAccountID(networkID types.NetworkID, accountID types.H160) PlatformAddress {
	return PlatformAddress{NetworkID: networkID, AccountID: accountID}
}

// FromPublicKey builds the address of a public key.
func FromPublicKey(networkID types.NetworkID, pub types.H512) PlatformAddress {
	return FromAccountID(networkID, crypto.AccountID(pub))
}

// ParsePlatformAddress decodes the bech32 text form.
func ParsePlatformAddress(s string) (PlatformAddress, error) {
	var addr PlatformAddress

	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return addr, types.Wrap(types.CodeInvalidFieldValue, err, "platform address %q", s)
	}
	if len(hrp) != 3 || hrp[2] != 'c' {
		return addr, types.Errorf(types.CodeInvalidFieldValue, "platform address %q: unexpected prefix %q", s, hrp)
	}
	networkID := types.NetworkID(hrp[:2])
	if err := networkID.Validate(); err != nil {
		return addr, err
	}

	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return addr, types.Wrap(types.CodeInvalidFieldValue, err, "platform address %q", s)
	}
	if len(payload) != 1+len(addr.AccountID) {
		return addr, types.Errorf(types.CodeInvalidFieldValue, "platform address %q: payload of %d bytes", s, len(payload))
	}
	if payload[0] != PlatformAddressVersion {
		return addr, types.Errorf(types.CodeInvalidFieldValue, "platform address %q: unknown version %d", s, payload[0])
	}

	addr.NetworkID = networkID
	copy(addr.AccountID[:], payload[1:])
	return addr, nil
}

// String returns the bech32 form.
func (a PlatformAddress) String() string {
	payload := append([]byte{PlatformAddressVersion}, a.AccountID[:]...)
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		// ConvertBits only fails on out-of-range input groups, impossible
		// for 8-bit source bytes.
		panic(err)
	}
	s, err := bech32.Encode(string(a.NetworkID)+"c", data)
	if err != nil {
		panic(err)
	}
	return s
}

func (a PlatformAddress) MarshalText() ([]byte, error) {
	if err := a.NetworkID.Validate(); err != nil {
		return nil, err
	}
	return []byte(a.String()), nil
}

func (a *PlatformAddress) UnmarshalText(b []byte) error {
	parsed, err := ParsePlatformAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
