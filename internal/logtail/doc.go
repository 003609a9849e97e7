// Package logtail reads the end of the visualizer's log file for the log
// pane.
//
// Read extracts the last N lines with a ring buffer, so memory stays at
// O(N) whatever the file size, and a missing file yields no lines rather than
// an error. The log is written by zap's JSON encoder; Parse turns each line
// into an Entry and Format renders it compactly:
//
//	lines, err := logtail.Read(cfg.LogPath, 200)
//	if err != nil {
//		return err
//	}
//	for _, e := range logtail.ParseLines(lines) {
//		fmt.Println(logtail.Format(e))
//	}
//
// Lines that are not JSON pass through untouched.
package logtail
