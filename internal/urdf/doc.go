// Package urdf loads URDF robot descriptions into a kinematic tree whose
// joints can be driven by name. A loaded Robot satisfies scene.RiggedModel.
//
// Only the kinematic structure is read: links, joints, origins, axes, and
// limits. Visual and collision geometry is ignored; the scene draws the
// link skeleton instead.
package urdf
