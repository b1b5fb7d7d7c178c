package flags

import "github.com/spf13/cobra"

const (
	ProfileFlag  = "profile"
	RegionFlag   = "region"
	LogLevelFlag = "log-level"
	YesFlag      = "yes"
)

// RegisterAWS adds the session flags every command shares.
func RegisterAWS(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(ProfileFlag, "p", "", "AWS named profile name")
	cmd.PersistentFlags().StringP(RegionFlag, "r", "", "Region name")
	cmd.PersistentFlags().String(LogLevelFlag, "warn", "Log level (debug, info, warn, error)")
}

func RegisterConfirmation(cmd *cobra.Command) {
	cmd.Flags().BoolP(YesFlag, "y", false, "Skip confirmation prompt")
}

// Changed reports the value of a flag the user set explicitly.
func Changed(cmd *cobra.Command, name string) (string, bool) {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}
