package assemble

import (
	"github.com/shadekit/matforge/internal/shadegraph"
	"github.com/shadekit/matforge/internal/texset"
)

// Step is one intermediate node in a channel's processing chain. The sampler
// output feeds the first step, each step feeds the next, and the last step
// feeds the rule's destination port.
type Step struct {
	TypeID  string
	InPort  string
	OutPort string
	// Defaults are staged on the node's inputs right after creation.
	Defaults map[string]any
	// FromSampler wires this step's input from the sampler output instead of
	// the previous step (the ambient-occlusion "bright" tap).
	FromSampler bool
}

// Rule maps one channel to its node chain and destination input.
type Rule struct {
	Channel texset.Channel
	Steps   []Step
	// OnOutput routes the destination to the output node instead of the
	// material (displacement only).
	OnOutput bool
	DestPort string
}

// Rules returns the chain registry for a texture set, in fixed channel order.
// The table is static apart from the two flag-dependent insertions
// (ambient occlusion on BaseColor, color splitter on Roughness/Opacity).
func Rules(set *texset.TextureSet) []Rule {
	splitR := Step{
		TypeID:  shadegraph.TypeColorSplitter,
		InPort:  shadegraph.PortInput,
		OutPort: shadegraph.PortOutR,
	}

	baseColor := Rule{
		Channel: texset.BaseColor,
		Steps: []Step{{
			TypeID:  shadegraph.TypeColorCorrect,
			InPort:  shadegraph.PortInput,
			OutPort: shadegraph.PortOutColor,
		}},
		DestPort: shadegraph.PortBaseColor,
	}
	if set.AmbientOcclusion {
		// The AO node taps the sampler directly on its bright input and takes
		// over the destination; the color correct stays in the graph for
		// manual grading.
		baseColor.Steps = append(baseColor.Steps, Step{
			TypeID:      shadegraph.TypeAmbientOcclusion,
			InPort:      shadegraph.PortBright,
			OutPort:     shadegraph.PortOut,
			FromSampler: true,
		})
	}

	roughness := Rule{
		Channel:  texset.Roughness,
		DestPort: shadegraph.PortReflRoughness,
	}
	if set.GameAssetSplit {
		roughness.Steps = append(roughness.Steps, splitR)
	}
	roughness.Steps = append(roughness.Steps, Step{
		TypeID:  shadegraph.TypeRamp,
		InPort:  shadegraph.PortInput,
		OutPort: shadegraph.PortOutColor,
	})

	opacity := Rule{
		Channel:  texset.Opacity,
		DestPort: shadegraph.PortOpacityColor,
	}
	if set.GameAssetSplit {
		opacity.Steps = append(opacity.Steps, splitR)
	}

	return []Rule{
		baseColor,
		roughness,
		{
			Channel: texset.Normal,
			Steps: []Step{{
				TypeID:   shadegraph.TypeBumpMap,
				InPort:   shadegraph.PortInput,
				OutPort:  shadegraph.PortOut,
				Defaults: map[string]any{shadegraph.PortInputType: shadegraph.BumpInputTangent},
			}},
			DestPort: shadegraph.PortBumpInput,
		},
		{
			Channel: texset.Displacement,
			Steps: []Step{{
				TypeID:  shadegraph.TypeDisplacement,
				InPort:  shadegraph.PortTexMap,
				OutPort: shadegraph.PortOut,
			}},
			OnOutput: true,
			DestPort: shadegraph.PortDisplacement,
		},
		opacity,
		{
			Channel:  texset.Metalness,
			DestPort: shadegraph.PortMetalness,
		},
	}
}
