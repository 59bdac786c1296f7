package quarkgl

import (
	"fmt"
	"strings"

	"midp/hal/gles"
)

type programKind uint8

const (
	kindTex programKind = iota + 1
	kindColor
	kindSimple
	kindSprite
)

var kindNames = map[string]programKind{
	"tex":    kindTex,
	"color":  kindColor,
	"simple": kindSimple,
	"sprite": kindSprite,
}

// Attribute slots. The Simple program aliases slot 0 and 1.
const (
	attrPosition = 0
	attrNormal   = 1
	attrColor    = 2
	attrMaterial = 3

	maxAttribs = 4
)

var attribSlots = map[programKind]map[string]int{
	kindTex:    {"aPosition": attrPosition, "aNormal": attrNormal, "aColorData": attrColor, "aMaterial": attrMaterial},
	kindColor:  {"aPosition": attrPosition, "aNormal": attrNormal, "aColorData": attrColor, "aMaterial": attrMaterial},
	kindSimple: {"a_position": attrPosition, "a_texcoord0": attrNormal},
	kindSprite: {"aPosition": attrPosition, "aColorData": attrColor},
}

type uniformID int

const (
	uProjMatrix uniformID = iota
	uMvMatrix
	uAmbIntensity
	uDirIntensity
	uLightDir
	uSphereSize
	uToonThreshold
	uToonHigh
	uToonLow
	uTexSize
	uIsTransparency
	uTextureUnit
	uSphereUnit
	uSampler0

	numUniforms
)

// Uniform locations start above the attribute slots so the two never alias.
const uniformBase = 16

var uniformNames = [numUniforms]string{
	"uProjMatrix", "uMvMatrix", "uAmbIntensity", "uDirIntensity", "uLightDir",
	"uSphereSize", "uToonThreshold", "uToonHigh", "uToonLow", "uTexSize",
	"uIsTransparency", "uTextureUnit", "uSphereUnit", "sampler0",
}

var lighting = []uniformID{
	uProjMatrix, uMvMatrix, uAmbIntensity, uDirIntensity, uLightDir,
	uSphereSize, uToonThreshold, uToonHigh, uToonLow, uSphereUnit,
}

var declared = map[programKind][]uniformID{
	kindTex:    append([]uniformID{uTexSize, uTextureUnit}, lighting...),
	kindColor:  lighting,
	kindSimple: {uSampler0},
	kindSprite: {uTexSize, uIsTransparency, uTextureUnit},
}

type program struct {
	kind     programKind
	filter   bool
	uniforms [numUniforms][4]float32
	matrices [2]Mat4
	has      [numUniforms]bool
}

// parseProgram identifies the program from its "// program: <name>" line.
// A "#define FILTER" line in either source turns on bilinear sampling.
func parseProgram(vs, fs string) (*program, error) {
	if strings.TrimSpace(vs) == "" || strings.TrimSpace(fs) == "" {
		return nil, fmt.Errorf("quarkgl: empty shader source")
	}
	var kind programKind
	for _, line := range strings.Split(vs, "\n") {
		line = strings.TrimSpace(line)
		name, ok := strings.CutPrefix(line, "// program:")
		if !ok {
			continue
		}
		kind = kindNames[strings.TrimSpace(name)]
		break
	}
	if kind == 0 {
		return nil, fmt.Errorf("quarkgl: link: unrecognised program")
	}
	p := &program{
		kind:   kind,
		filter: strings.Contains(vs, "#define FILTER") || strings.Contains(fs, "#define FILTER"),
	}
	p.matrices[0] = Mat4Identity()
	p.matrices[1] = Mat4Identity()
	for _, id := range declared[kind] {
		p.has[id] = true
	}
	return p, nil
}

func (p *program) attrib(name string) gles.Location {
	slot, ok := attribSlots[p.kind][name]
	if !ok {
		return gles.NoLocation
	}
	return gles.Location(slot)
}

func (p *program) uniform(name string) gles.Location {
	for id, n := range uniformNames {
		if n == name && p.has[id] {
			return gles.Location(uniformBase + id)
		}
	}
	return gles.NoLocation
}

func (p *program) slot(loc gles.Location) (uniformID, bool) {
	id := uniformID(loc - uniformBase)
	if id < 0 || id >= numUniforms || !p.has[id] {
		return 0, false
	}
	return id, true
}

func (p *program) set(loc gles.Location, v ...float32) {
	if p == nil {
		return
	}
	id, ok := p.slot(loc)
	if !ok {
		return
	}
	var u [4]float32
	copy(u[:], v)
	p.uniforms[id] = u
}

func (p *program) f(id uniformID) float32 { return p.uniforms[id][0] }

func (p *program) unit(id uniformID) int { return int(p.uniforms[id][0]) }
