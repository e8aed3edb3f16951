package rename

import "strings"

const (
	configurationOldBranchKeyConstant = "old_branch"
	configurationNewBranchKeyConstant = "new_branch"
	configurationKeepOldKeyConstant   = "keep_old"
	configurationDryRunKeyConstant    = "dry_run"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures persisted configuration for the rename command.
type CommandConfiguration struct {
	OldBranch     string `mapstructure:"old_branch"`
	NewBranch     string `mapstructure:"new_branch"`
	KeepOldBranch bool   `mapstructure:"keep_old"`
	DryRun        bool   `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration returns baseline configuration values for the rename command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		OldBranch:     string(BranchMaster),
		NewBranch:     string(BranchMain),
		KeepOldBranch: false,
		DryRun:        false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the rename command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + configurationKeySeparatorConstant + configurationOldBranchKeyConstant: defaults.OldBranch,
		rootKey + configurationKeySeparatorConstant + configurationNewBranchKeyConstant: defaults.NewBranch,
		rootKey + configurationKeySeparatorConstant + configurationKeepOldKeyConstant:   defaults.KeepOldBranch,
		rootKey + configurationKeySeparatorConstant + configurationDryRunKeyConstant:    defaults.DryRun,
	}
}

// Sanitize trims configured branch names and restores defaults for empty values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.OldBranch = strings.TrimSpace(configuration.OldBranch)
	if len(sanitized.OldBranch) == 0 {
		sanitized.OldBranch = string(BranchMaster)
	}
	sanitized.NewBranch = strings.TrimSpace(configuration.NewBranch)
	if len(sanitized.NewBranch) == 0 {
		sanitized.NewBranch = string(BranchMain)
	}
	return sanitized
}
