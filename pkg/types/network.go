package types

// NetworkID names a chain: two lowercase ASCII letters such as "cc"
// (mainnet) or "tc" (testnet). Its canonical bytes are the two letters.
type NetworkID string

// Common network ids.
const (
	MainnetID NetworkID = "cc"
	TestnetID NetworkID = "tc"
)

// Validate checks the two-letter form.
func (n NetworkID) Validate() error {
	if len(n) != 2 {
		return Errorf(CodeInvalidFieldValue, "network id %q: expected 2 characters", string(n))
	}
	for i := 0; i < 2; i++ {
		if n[i] < 'a' || n[i] > 'z' {
			return Errorf(CodeInvalidFieldValue, "network id %q: expected lowercase letters", string(n))
		}
	}
	return nil
}

func (n NetworkID) Bytes() []byte { return []byte(n) }

func (n NetworkID) String() string { return string(n) }

func (n NetworkID) MarshalText() ([]byte, error) { return []byte(n), nil }

func (n *NetworkID) UnmarshalText(b []byte) error {
	id := NetworkID(b)
	if err := id.Validate(); err != nil {
		return err
	}
	*n = id
	return nil
}
