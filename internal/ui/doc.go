// Package ui is the robotviz terminal host: a Bubble Tea program that draws
// the scene every frame and drives the pose backend from key presses.
//
// # Update loop
//
// All scene mutation happens in Model.Update. Network work runs inside
// tea.Cmd functions and reaches the scene only as messages:
//
//   - frameMsg advances camera damping at about 60Hz and schedules the next
//     frame. View rasterises the scene on every redraw.
//   - healthTickMsg copies the poller's state.Snapshot into the header once a
//     second and refreshes the log pane when it is open.
//   - validateResultMsg carries the reply to a one-shot validation.
//   - streamOpenedMsg, streamEventMsg and streamEndedMsg drive the motion
//     stream. Each carries the generation it was started under; anything from
//     an older generation is dropped and its stream closed.
//   - modelLoadedMsg finishes a URDF load started from the prompt or the
//     -model flag.
//
// # Keys
//
//	s        start / stop the motion stream
//	v        validate the example pose once
//	o        load a URDF file
//	r        resting pose
//	←→↑↓     orbit (also h l k j)
//	+ -      zoom
//	L        log pane
//	T        cycle theme
//	?        help
//	q        quit
//
// The theme, the log pane toggle and recently loaded models persist in
// prefs.toml.
package ui
