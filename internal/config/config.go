// Package config loads matforge profiles: HCL files describing channel
// keyword lists, grouping policy, and assembly flags. A profile fills the
// request the same way the host dialog would.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/shadekit/matforge/api"
	"github.com/shadekit/matforge/internal/texset"
)

// Profile is a decoded matforge.hcl file. Zero values defer to built-in
// defaults.
type Profile struct {
	// MaterialName is the base material name.
	MaterialName string `hcl:"material_name,optional"`
	// Policy is the identifier policy: "before" (default) or "after".
	Policy string `hcl:"policy,optional"`
	// Strict groups on the intersection of per-channel identifiers.
	Strict bool `hcl:"strict,optional"`

	Flags    *FlagsBlock    `hcl:"flags,block"`
	Channels []ChannelBlock `hcl:"channel,block"`
}

// FlagsBlock mirrors api.Flags.
type FlagsBlock struct {
	AmbientOcclusion bool `hcl:"ambient_occlusion,optional"`
	GameAssetSplit   bool `hcl:"game_asset_split,optional"`
	CopyTextures     bool `hcl:"copy_textures,optional"`
	ImportModels     bool `hcl:"import_models,optional"`
}

// ChannelBlock overrides one channel's matching configuration.
type ChannelBlock struct {
	Name string `hcl:"name,label"`
	// Enabled left unset keeps the channel enabled.
	Enabled  *bool    `hcl:"enabled,optional"`
	Keywords []string `hcl:"keywords,optional"`
}

// Load decodes and validates a profile file (.hcl or .json).
func Load(path string) (*Profile, error) {
	var p Profile
	if err := hclsimple.DecodeFile(path, nil, &p); err != nil {
		return nil, fmt.Errorf("load profile %s: %w", path, err)
	}

	for _, ch := range p.Channels {
		if _, ok := texset.ParseChannel(ch.Name); !ok {
			return nil, fmt.Errorf("load profile %s: unknown channel %q", path, ch.Name)
		}
	}
	if p.Policy != "" {
		if _, ok := texset.ParsePolicy(p.Policy); !ok {
			return nil, fmt.Errorf("load profile %s: unknown policy %q", path, p.Policy)
		}
	}
	return &p, nil
}

// IdentifierPolicy returns the parsed policy (default PolicyBefore).
func (p *Profile) IdentifierPolicy() texset.IdentifierPolicy {
	pol, _ := texset.ParsePolicy(p.Policy)
	return pol
}

// Request builds an api.Request for folder from the profile.
func (p *Profile) Request(folder string) api.Request {
	req := api.Request{
		MaterialNameBase: p.MaterialName,
		Folder:           folder,
	}
	if p.Flags != nil {
		req.Flags = api.Flags{
			AmbientOcclusion: p.Flags.AmbientOcclusion,
			GameAssetSplit:   p.Flags.GameAssetSplit,
			CopyTextures:     p.Flags.CopyTextures,
			ImportModels:     p.Flags.ImportModels,
		}
	}
	if len(p.Channels) > 0 {
		req.Channels = make(map[string]api.ChannelConfig, len(p.Channels))
		for _, ch := range p.Channels {
			enabled := true
			if ch.Enabled != nil {
				enabled = *ch.Enabled
			}
			req.Channels[ch.Name] = api.ChannelConfig{
				Enabled:  enabled,
				Keywords: ch.Keywords,
			}
		}
	}
	return req
}
