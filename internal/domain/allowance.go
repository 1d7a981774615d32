package domain

// AllowanceState result of an allowance check for (chain, token, account).
type AllowanceState int

const (
	AllowanceUnknown AllowanceState = iota
	AllowanceSufficient
	AllowanceInsufficient
)

const (
	allowanceStringUnknown      = "unknown"
	allowanceStringSufficient   = "sufficient"
	allowanceStringInsufficient = "insufficient_needs_approval"
)

// String returns the string representation of the state.
func (s AllowanceState) String() string {
	switch s {
	case AllowanceSufficient:
		return allowanceStringSufficient
	case AllowanceInsufficient:
		return allowanceStringInsufficient
	default:
		return allowanceStringUnknown
	}
}

// MarshalText encodes the state as its string form.
func (s AllowanceState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes the string form. Unrecognized values read as unknown.
func (s *AllowanceState) UnmarshalText(text []byte) error {
	switch string(text) {
	case allowanceStringSufficient:
		*s = AllowanceSufficient
	case allowanceStringInsufficient:
		*s = AllowanceInsufficient
	default:
		*s = AllowanceUnknown
	}
	return nil
}
