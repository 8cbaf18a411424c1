// Package build provides the canonical document build for texbuilder.
//
// Every execution path (build command, watch loop, self-test) routes through
// Service.Run, which validates the request, probes the toolchain, runs
// latexmk exactly once and classifies the resulting TeX log. Nothing is
// retried: a failing external tool ends the build with a toolchain error that
// carries the tool's exit status.
package build
