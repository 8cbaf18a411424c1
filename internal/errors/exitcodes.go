package errors

// Exit codes returned by the texbuilder CLI. Toolchain failures are the
// exception: they exit with the external tool's own status.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a failed check, missing dependency or runtime failure.
	ExitFailure = 1

	// ExitUsage indicates an invalid flag, path or configuration value.
	ExitUsage = 2

	// ExitInterrupted is returned when a long-running command is stopped by a signal.
	ExitInterrupted = 130
)
