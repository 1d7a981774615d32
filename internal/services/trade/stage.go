package trade

// Stage of the trade pipeline.
type Stage string

const (
	StageIdle                  Stage = "idle"
	StageQuotePending          Stage = "quote_pending"
	StageQuoteReady            Stage = "quote_ready"
	StageAllowanceCheckPending Stage = "allowance_check_pending"
	StageAllowanceInsufficient Stage = "allowance_insufficient"
	StageApprovalPending       Stage = "approval_pending"
	StageAllowanceSufficient   Stage = "allowance_sufficient"
	StageSwapPending           Stage = "swap_pending"
	StageSwapSucceeded         Stage = "swap_succeeded"
	StageSwapFailed            Stage = "swap_failed"
)

// Pending reports whether a remote call of the stage is in flight.
func (s Stage) Pending() bool {
	switch s {
	case StageQuotePending, StageAllowanceCheckPending, StageApprovalPending, StageSwapPending:
		return true
	}
	return false
}

// Swappable reports whether a swap may be started from the stage.
func (s Stage) Swappable() bool {
	switch s {
	case StageAllowanceSufficient, StageAllowanceInsufficient, StageSwapFailed:
		return true
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}
