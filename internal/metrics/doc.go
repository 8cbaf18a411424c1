// Package metrics provides observability hooks for texbuilder builds and the
// watch loop.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	svc := build.NewService(tc, runner.NewExecRunner())         // NoopRecorder
//	svc = svc.WithRecorder(metrics.NewPrometheusRecorder(reg))  // when watching with --metrics-listen
//
// PrometheusRecorder registers texbuilder_* collectors on the supplied registry,
// and HTTPHandler exposes that registry for scraping.
package metrics
