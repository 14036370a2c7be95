// Package document implements the per-document coordination core: one
// actor goroutine per document id owning the authoritative content, the
// set of live sessions, fan-out of edits, and the save scheduling that
// keeps the durable store close behind memory.
package document
