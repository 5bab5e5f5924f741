// Package dm connects the beamline to the APS Data Management workflow
// service.
//
// A Connector submits processing workflows over the DM owner REST API and
// monitors each submitted job from a background goroutine: status is
// polled on a fixed period, progress is reported on a slower cadence, and
// monitoring stops when the job reaches a terminal state or the job
// deadline passes. There is no remote cancel; the deadline only stops the
// watching, not the workflow.
package dm
