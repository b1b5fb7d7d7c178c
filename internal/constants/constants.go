package constants

var (
	Version     = "0.0.1-dev"
	ServiceName = "lfiam"
)

// SentinelPrincipal defers every access decision to IAM.
const SentinelPrincipal = "IAM_ALLOWED_PRINCIPALS"
