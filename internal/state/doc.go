// Package state shares backend health between the background poller and the
// visualizer UI.
//
// The poller calls Store.Update after every /health check; the UI reads
// Store.Snapshot on each frame to draw the header badge. Update keeps the
// last known health when a check fails and counts consecutive failures, so
// a single dropped request shows the old value with an error attached while
// two in a row switch the badge to OFFLINE:
//
//	store.Update(true, nil)      // ONLINE
//	store.Update(false, nil)     // UNHEALTHY: answered, not "healthy"
//	store.Update(false, err)     // still UNHEALTHY, LastError set
//	store.Update(false, err)     // OFFLINE
//
// Snapshots are copies; the error is re-wrapped so callers never share the
// stored instance.
package state
