package api

// Request is the full input consumed from the UI/CLI layer.
// It maps a texture folder to one or more materials.
type Request struct {
	// MaterialNameBase names the material; grouped sets append "_<identifier>".
	MaterialNameBase string `json:"material_name_base"`
	// Folder is the directory scanned for texture files (non-recursive).
	Folder string `json:"folder"`
	// Channels configures matching per texture channel, keyed by channel name
	// (BaseColor, Roughness, Normal, Displacement, Opacity, Metalness).
	Channels map[string]ChannelConfig `json:"channels,omitempty"`
	// Flags toggles optional assembly behavior.
	Flags Flags `json:"flags"`
}

// ChannelConfig configures filename matching for a single channel.
type ChannelConfig struct {
	// Enabled includes the channel in scanning and assembly.
	Enabled bool `json:"enabled"`
	// Keywords are tried in order; the first match wins for a file.
	Keywords []string `json:"keywords,omitempty"`
}

// Flags toggles optional per-request behavior.
type Flags struct {
	// AmbientOcclusion inserts an AO node into the BaseColor chain.
	AmbientOcclusion bool `json:"ambient_occlusion,omitempty"`
	// GameAssetSplit routes Roughness and Opacity through a color splitter
	// (channel R), for packed game textures.
	GameAssetSplit bool `json:"game_asset_split,omitempty"`
	// CopyTextures copies matched files next to the material before assembly
	// and rewrites set paths to the copies.
	CopyTextures bool `json:"copy_textures,omitempty"`
	// ImportModels is accepted for request compatibility; model import is
	// performed by a downstream consumer, never by matforge.
	ImportModels bool `json:"import_models,omitempty"`
}

// Result describes one successfully assembled material.
type Result struct {
	// Identifier is the texture-set key ("" for the default set).
	Identifier string `json:"identifier"`
	// MaterialName is the final material name.
	MaterialName string `json:"material_name"`
	// Channels maps channel name to the texture path wired for it.
	Channels map[string]string `json:"channels,omitempty"`
}
