// Package spatial provides the pose math shared by the weapon core.
//
// Vectors and rotations are [mgl64.Vec3] and [mgl64.Quat]. The helpers here
// follow the conventions of the engines the core is hosted in:
//
//   - angles passed to [AngleAxis] are degrees
//   - [LookRotation] maps local +Z to forward and local +Y toward up
//   - [Lerp] and [LerpVec] clamp their parameter to [0, 1]
//
// # Example
//
//	guide := spatial.Pose{Position: mgl64.Vec3{0, 1, 0}, Rotation: mgl64.QuatIdent()}
//	local := root.InverseTransformPoint(guide.Position)
package spatial
