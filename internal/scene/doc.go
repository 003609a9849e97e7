// Package scene holds the visualizer's world: a procedural figure shown until
// a rigged model loads, the pose update rules that drive either one, an orbit
// camera, and a character rasterizer that turns the world into a Frame a
// terminal host can paint.
package scene
