package errors

// Convenience functions for common error patterns

// Config errors

func ConfigInvalid(path string, cause error) *TexBuilderError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *TexBuilderError {
	return New(CategoryValidation, SeverityFatal, field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// PathNotFound reports a user-supplied path that does not exist.
func PathNotFound(field, path string) *TexBuilderError {
	return New(CategoryValidation, SeverityFatal, field+" not found: "+path).
		WithContext("field", field).
		WithContext("path", path)
}

// Dependency errors

// DependencyMissing reports an external binary or runtime that is absent or
// unreachable. hint is shown to the user verbatim.
func DependencyMissing(name, hint string, cause error) *TexBuilderError {
	return Wrap(cause, CategoryDependency, SeverityFatal, name+" is not available").
		WithContext("dependency", name).
		WithContext("hint", hint)
}

// Toolchain errors

// ToolFailed reports a non-zero exit from an external tool. The exit code is
// propagated to the process exit status unchanged.
func ToolFailed(tool string, exitCode int) *TexBuilderError {
	e := New(CategoryToolchain, SeverityFatal, tool+" failed").
		WithContext("tool", tool).
		WithContext("exit_code", exitCode)
	e.ExitCode = exitCode
	return e
}

// ToolStartFailed reports an external tool that could not be started at all.
func ToolStartFailed(tool string, cause error) *TexBuilderError {
	return Wrap(cause, CategoryToolchain, SeverityFatal, "could not run "+tool).
		WithContext("tool", tool)
}

// Check errors

func ChecksFailed(failed int) *TexBuilderError {
	return New(CategoryCheck, SeverityError, "some checks failed").
		WithContext("failed", failed)
}

func StepsFailed(failed int) *TexBuilderError {
	return New(CategoryCheck, SeverityError, "some steps failed").
		WithContext("failed", failed)
}

func StrictLintFailed(warnings int) *TexBuilderError {
	return New(CategoryCheck, SeverityError, "lint warnings found in strict mode").
		WithContext("warnings", warnings)
}

// Filesystem errors

func FileSystemError(operation string, cause error) *TexBuilderError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation)
}

// Runtime errors

func Interrupted() *TexBuilderError {
	return New(CategoryInterrupted, SeverityInfo, "interrupted")
}

func InternalError(message string, cause error) *TexBuilderError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
