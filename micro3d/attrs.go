package micro3d

// Environment attribute bits.
const (
	EnvLighting        = 1
	EnvSphereMap       = 2
	EnvToonShading     = 4
	EnvSemiTransparent = 8
)

// Primitive commands. A command ORs one type with the PAttr and PData flags
// below.
const (
	PrimPoints       = 0x01000000
	PrimLines        = 0x02000000
	PrimTriangles    = 0x03000000
	PrimQuads        = 0x04000000
	PrimPointSprites = 0x05000000

	primTypeMask = 0x07000000
)

// Primitive attributes.
const (
	PAttrLighting  = 0x01
	PAttrSphereMap = 0x02
	PAttrColorKey  = 0x10
	PAttrBlendHalf = 0x20
	PAttrBlendAdd  = 0x40
	PAttrBlendSub  = 0x60

	pattrBlendMask = 0x60
)

// Primitive data layout flags.
const (
	PDataNormalPerFace   = 0x0200
	PDataNormalPerVertex = 0x0300
	PDataColorPerCommand = 0x0400
	PDataColorPerFace    = 0x0800
	PDataTexCoord        = 0x3000

	pdataNormalMask = 0x0300
	pdataColorMask  = 0x0C00
)

// primBlend maps the primitive blend bits to a blend index, 0 for none.
func primBlend(cmd int) int {
	return (cmd & pattrBlendMask) >> 5
}
