// Package forge orchestrates a material-creation request: validate the
// folder, group textures into sets, and assemble one material per set.
// Set-level failures are logged and skipped; the rest of the request
// continues.
package forge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/shadekit/matforge/api"
	"github.com/shadekit/matforge/internal/assemble"
	"github.com/shadekit/matforge/internal/shadegraph"
	"github.com/shadekit/matforge/internal/texset"
)

// ErrNoFolder indicates a missing or invalid texture folder. Surfaced before
// any grouping work happens.
var ErrNoFolder = errors.New("no texture folder selected")

// defaultMaterialName is used when the request leaves the base name empty.
const defaultMaterialName = "New_Material"

// Host instantiates the blank material preset and hands back its graph.
// The engine locates the StandardMaterial and Output nodes itself.
type Host interface {
	CreateMaterial(name string) (shadegraph.Graph, error)
}

// Material is one successfully assembled material, keyed by identifier in
// the engine's result mapping.
type Material struct {
	Identifier string
	Name       string
	Graph      shadegraph.Graph
	Set        *texset.TextureSet
}

// Result converts the material into its serializable form.
func (m *Material) Result() api.Result {
	channels := make(map[string]string)
	for _, ch := range texset.Channels() {
		if m.Set.Present(ch) {
			channels[ch.String()] = m.Set.Path(ch)
		}
	}
	return api.Result{
		Identifier:   m.Identifier,
		MaterialName: m.Name,
		Channels:     channels,
	}
}

// Options configures an Engine.
type Options struct {
	// Policy selects the identifier extraction side (default PolicyBefore).
	Policy texset.IdentifierPolicy
	// Strict keys grouping on the intersection of per-channel identifiers.
	Strict bool
	// Host creates material graphs; defaults to the in-memory host.
	Host Host
	// Log defaults to a no-op logger.
	Log *zap.Logger
}

// Engine runs material-creation requests.
type Engine struct {
	policy    texset.IdentifierPolicy
	strict    bool
	host      Host
	log       *zap.Logger
	assembler *assemble.Assembler
}

// NewEngine returns an Engine with the given options.
func NewEngine(opts Options) *Engine {
	if opts.Host == nil {
		opts.Host = MemoryHost{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Engine{
		policy:    opts.Policy,
		strict:    opts.Strict,
		host:      opts.Host,
		log:       opts.Log,
		assembler: assemble.New(opts.Log),
	}
}

// Run executes a request and returns the identifier -> material mapping.
// Folder and grouping failures abort the whole request; assembly failures
// drop only their own set.
func (e *Engine) Run(req api.Request) (map[string]*Material, error) {
	sets, err := e.Group(req)
	if err != nil {
		return nil, err
	}

	results := make(map[string]*Material)
	for _, ident := range sortedIdents(sets) {
		set := sets[ident]
		mat, err := e.buildMaterial(req, set)
		if err != nil {
			e.log.Error("material skipped",
				zap.String("identifier", ident),
				zap.String("material", set.MaterialName),
				zap.Error(err))
			continue
		}
		results[ident] = mat
	}
	return results, nil
}

// Group validates the folder and resolves texture sets without touching any
// graph. Used by Run and by the scan command's dry run.
func (e *Engine) Group(req api.Request) (map[string]*texset.TextureSet, error) {
	if req.Folder == "" {
		return nil, ErrNoFolder
	}
	info, err := os.Stat(req.Folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoFolder, req.Folder)
	}

	files, err := texset.ScanDir(req.Folder)
	if err != nil {
		return nil, err
	}

	base := req.MaterialNameBase
	if base == "" {
		base = defaultMaterialName
	}

	return texset.Group(files, e.specs(req), texset.GroupOptions{
		BaseName:         base,
		Policy:           e.policy,
		Strict:           e.strict,
		AmbientOcclusion: req.Flags.AmbientOcclusion,
		GameAssetSplit:   req.Flags.GameAssetSplit,
		CopyTextures:     req.Flags.CopyTextures,
	})
}

// specs merges request channel overrides onto the defaults. Unknown channel
// names are logged and ignored rather than failing the request.
func (e *Engine) specs(req api.Request) []texset.ChannelSpec {
	specs := texset.DefaultSpecs()
	for name, cfg := range req.Channels {
		ch, ok := texset.ParseChannel(name)
		if !ok {
			e.log.Warn("unknown channel in request", zap.String("channel", name))
			continue
		}
		specs[ch].Enabled = cfg.Enabled
		if len(cfg.Keywords) > 0 {
			specs[ch].Keywords = cfg.Keywords
		}
	}
	return specs
}

func (e *Engine) buildMaterial(req api.Request, set *texset.TextureSet) (*Material, error) {
	if set.CopyTextures {
		dest := filepath.Join(req.Folder, "textures", set.MaterialName)
		if err := texset.CopyInto(set, dest); err != nil {
			return nil, err
		}
	}

	g, err := e.host.CreateMaterial(set.MaterialName)
	if err != nil {
		return nil, fmt.Errorf("create material %s: %w", set.MaterialName, err)
	}

	mats := g.FindNodesByType(shadegraph.TypeStandardMaterial)
	if len(mats) == 0 {
		return nil, fmt.Errorf("material %s: standard material node not found", set.MaterialName)
	}
	outs := g.FindNodesByType(shadegraph.TypeOutput)
	if len(outs) == 0 {
		return nil, fmt.Errorf("material %s: output node not found", set.MaterialName)
	}

	if err := e.assembler.Assemble(g, mats[0], outs[0], set); err != nil {
		return nil, err
	}

	return &Material{
		Identifier: set.Identifier,
		Name:       set.MaterialName,
		Graph:      g,
		Set:        set,
	}, nil
}

func sortedIdents(sets map[string]*texset.TextureSet) []string {
	out := make([]string, 0, len(sets))
	for ident := range sets {
		out = append(out, ident)
	}
	sort.Strings(out)
	return out
}
