// Package quarkgl is a small software GL for the runtime's 3D pipeline.
//
// Device implements gles.GL by interpreting the four micro3d shader programs
// (tex, color, simple, sprite) natively instead of compiling GLSL. Programs
// are recognised by their "// program: <name>" header line. Rasterization is
// affine with a float depth buffer and the GLES2 blend functions the renderer
// uses.
//
// The package also carries the float math (Vec3, Mat4) shared with micro3d.
// Matrices are column-major, m[col*4+row], matching the GL uniform layout.
package quarkgl
