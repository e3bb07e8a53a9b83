package shadegraph

// Node type IDs. The dotted form follows the Redshift asset-ID convention so
// a host adapter can pass them through unchanged.
const (
	TypeStandardMaterial = "com.redshift3d.redshift4c4d.nodes.core.standardmaterial"
	TypeOutput           = "com.redshift3d.redshift4c4d.node.output"
	TypeTextureSampler   = "com.redshift3d.redshift4c4d.nodes.core.texturesampler"
	TypeColorCorrect     = "com.redshift3d.redshift4c4d.nodes.core.rscolorcorrection"
	TypeBumpMap          = "com.redshift3d.redshift4c4d.nodes.core.bumpmap"
	TypeDisplacement     = "com.redshift3d.redshift4c4d.nodes.core.displacement"
	TypeRamp             = "com.redshift3d.redshift4c4d.nodes.core.rsramp"
	TypeColorSplitter    = "com.redshift3d.redshift4c4d.nodes.core.rscolorsplitter"
	TypeAmbientOcclusion = "com.redshift3d.redshift4c4d.nodes.core.ambientocclusion"
)

// Port IDs shared across node types.
const (
	PortPath       = "path"
	PortColorspace = "colorspace"
	PortInput      = "input"
	PortInputType  = "inputtype"
	PortOutColor   = "outcolor"
	PortOut        = "out"
	PortTexMap     = "texmap"
	PortBright     = "bright"
	PortDark       = "dark"
	PortOutR       = "outr"
	PortOutG       = "outg"
	PortOutB       = "outb"

	PortBaseColor     = "base_color"
	PortReflRoughness = "refl_roughness"
	PortBumpInput     = "bump_input"
	PortOpacityColor  = "opacity_color"
	PortMetalness     = "metalness"
	PortDisplacement  = "displacement"
)

// Well-known default values.
const (
	// ColorspaceRaw disables color management on a sampler input.
	ColorspaceRaw = "RS_INPUT_COLORSPACE_RAW"
	// BumpInputTangent selects tangent-space normal interpretation.
	BumpInputTangent = int32(1)
)

// NodeType declares the ports a node type exposes.
type NodeType struct {
	ID      string
	Inputs  []string
	Outputs []string
}

func (t *NodeType) hasPort(portID string, output bool) bool {
	ports := t.Inputs
	if output {
		ports = t.Outputs
	}
	for _, p := range ports {
		if p == portID {
			return true
		}
	}
	return false
}

var catalog = map[string]*NodeType{
	TypeStandardMaterial: {
		ID: TypeStandardMaterial,
		Inputs: []string{
			PortBaseColor, PortReflRoughness, PortBumpInput,
			PortOpacityColor, PortMetalness,
		},
		Outputs: []string{PortOutColor},
	},
	TypeOutput: {
		ID:     TypeOutput,
		Inputs: []string{PortDisplacement},
	},
	TypeTextureSampler: {
		ID:      TypeTextureSampler,
		Inputs:  []string{PortPath, PortColorspace},
		Outputs: []string{PortOutColor},
	},
	TypeColorCorrect: {
		ID:      TypeColorCorrect,
		Inputs:  []string{PortInput},
		Outputs: []string{PortOutColor},
	},
	TypeBumpMap: {
		ID:      TypeBumpMap,
		Inputs:  []string{PortInput, PortInputType},
		Outputs: []string{PortOut},
	},
	TypeDisplacement: {
		ID:      TypeDisplacement,
		Inputs:  []string{PortTexMap},
		Outputs: []string{PortOut},
	},
	TypeRamp: {
		ID:      TypeRamp,
		Inputs:  []string{PortInput},
		Outputs: []string{PortOutColor},
	},
	TypeColorSplitter: {
		ID:      TypeColorSplitter,
		Inputs:  []string{PortInput},
		Outputs: []string{PortOutR, PortOutG, PortOutB},
	},
	TypeAmbientOcclusion: {
		ID:      TypeAmbientOcclusion,
		Inputs:  []string{PortBright, PortDark},
		Outputs: []string{PortOut},
	},
}

// LookupType resolves a node type from the catalog.
func LookupType(typeID string) (*NodeType, bool) {
	t, ok := catalog[typeID]
	return t, ok
}
