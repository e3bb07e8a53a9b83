package texset

import (
	"errors"
	"sort"
)

// ErrNoMatches indicates that grouping produced no texture sets: no enabled
// channel keyword matched any file in the scanned directory.
var ErrNoMatches = errors.New("no texture matches found")

// TextureSet is the resolved per-identifier mapping of channel to texture
// file, ready for graph assembly. Created once per grouping pass and consumed
// exactly once; Paths is rewritten in place only by CopyInto.
type TextureSet struct {
	Identifier   string
	MaterialName string
	Paths        [NumChannels]string // "" = channel absent

	AmbientOcclusion bool
	GameAssetSplit   bool
	CopyTextures     bool
}

// Path returns the file wired for ch, or "" if the channel is absent.
func (s *TextureSet) Path(ch Channel) string {
	return s.Paths[ch]
}

// Present reports whether ch has a file in this set.
func (s *TextureSet) Present(ch Channel) bool {
	return s.Paths[ch] != ""
}

// GroupOptions controls grouping policy.
type GroupOptions struct {
	// BaseName is the material name; non-empty identifiers append "_<ident>".
	BaseName string
	// Policy selects the identifier extraction side (default PolicyBefore).
	Policy IdentifierPolicy
	// Strict keys the result on the intersection of per-channel identifiers
	// instead of the default permissive union.
	Strict bool

	AmbientOcclusion bool
	GameAssetSplit   bool
	CopyTextures     bool
}

// Group aggregates per-channel keyword matches over files into texture sets
// keyed by asset identifier.
//
// Per channel, every file is tested against the configured keywords in order;
// the first matching keyword yields the identifier, and the first-seen path
// per (channel, identifier) pair is kept. A channel with exactly one match
// across the whole directory is rekeyed to the empty identifier so lone files
// of different channels still group together.
func Group(files []Candidate, specs []ChannelSpec, opts GroupOptions) (map[string]*TextureSet, error) {
	var perChannel [NumChannels]map[string]string

	for _, spec := range specs {
		if !spec.Enabled || len(spec.Keywords) == 0 {
			continue
		}
		m := make(map[string]string)
		matches := 0
		for _, f := range files {
			kw, ok := MatchKeyword(f.Name, spec.Keywords)
			if !ok {
				continue
			}
			matches++
			ident, _ := Extract(f.Name, kw, opts.Policy)
			if _, seen := m[ident]; !seen {
				m[ident] = f.Path
			}
		}
		if matches == 1 {
			// Exactly one match in the whole directory: force the default
			// identifier so the lone file can merge with the other channels'
			// lone files.
			for _, p := range m {
				m = map[string]string{"": p}
			}
		}
		perChannel[spec.Channel] = m
	}

	idents := groupingKeys(perChannel[:], opts.Strict)
	if len(idents) == 0 {
		return nil, ErrNoMatches
	}

	sets := make(map[string]*TextureSet, len(idents))
	for _, ident := range idents {
		set := &TextureSet{
			Identifier:       ident,
			MaterialName:     materialName(opts.BaseName, ident),
			AmbientOcclusion: opts.AmbientOcclusion,
			GameAssetSplit:   opts.GameAssetSplit,
			CopyTextures:     opts.CopyTextures,
		}
		for _, ch := range Channels() {
			if m := perChannel[ch]; m != nil {
				set.Paths[ch] = m[ident]
			}
		}
		sets[ident] = set
	}
	return sets, nil
}

// groupingKeys computes the sorted identifier set: the union of per-channel
// keys, or their intersection in strict mode. Channels that matched nothing
// never participate.
func groupingKeys(perChannel []map[string]string, strict bool) []string {
	var counts map[string]int
	active := 0
	for _, m := range perChannel {
		if len(m) == 0 {
			continue
		}
		active++
		if counts == nil {
			counts = make(map[string]int)
		}
		for ident := range m {
			counts[ident]++
		}
	}

	var out []string
	for ident, n := range counts {
		if strict && n < active {
			continue
		}
		out = append(out, ident)
	}
	sort.Strings(out)
	return out
}

func materialName(base, ident string) string {
	if ident == "" {
		return base
	}
	return base + "_" + ident
}
