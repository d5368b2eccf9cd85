// Package events defines the progress events a dispatch run publishes on the
// event bus.
//
// Available event types:
//   - BatchEvent: a batch was dispatched, completed or failed
//   - RunEvent: a run started or finished
package events
