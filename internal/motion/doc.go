// Package motion is the visualizer's link to the pose backend: a
// server-sent event subscription on /stream_motion and a one-shot pose
// validation on /validate.
package motion
