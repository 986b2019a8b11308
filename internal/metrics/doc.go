// Package metrics records what a clean run did.
//
// Components receive a Recorder and never check for nil: NoopRecorder is
// the default and does nothing. When a metrics file is configured the
// service uses PrometheusRecorder and writes its registry in the text
// exposition format at the end of the run, ready for the node exporter's
// textfile collector:
//
//	rec := metrics.NewPrometheusRecorder(nil)
//	svc := services.NewCleanService(..., rec)
//	...
//	err := rec.WriteTextfile("/var/lib/node_exporter/edxml.prom")
package metrics
