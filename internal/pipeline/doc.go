// Package pipeline runs one feed build as an ordered list of steps.
//
// The default order is load lists, harvest, normalize, resolve, emit and
// optionally metrics. Each step reads what earlier steps left in the shared
// model.Run and adds its own results. A step returns an error only for
// failures that must stop the run, such as a missing seed list or an
// unwritable output directory; network trouble is recorded in the run as a
// degraded outcome instead.
package pipeline
