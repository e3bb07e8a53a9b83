package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shadekit/matforge/api"
	"github.com/shadekit/matforge/internal/config"
	"github.com/shadekit/matforge/internal/forge"
	"github.com/shadekit/matforge/internal/texset"
)

var (
	profilePath  string
	materialName string
	policyName   string
	strictGroup  bool
	outDir       string
	jsonOutput   bool

	flagAO   bool
	flagGame bool
	flagCopy bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&profilePath, "profile", "p", "", "Path to a matforge.hcl profile")
	pf.StringVar(&policyName, "policy", "", "Identifier policy: before or after")
	pf.BoolVar(&strictGroup, "strict", false, "Group on the intersection of per-channel identifiers")
	pf.StringVarP(&materialName, "name", "n", "", "Base material name")
	pf.BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	f := rootCmd.Flags()
	f.StringVarP(&outDir, "out", "o", "materials", "Directory for material graph databases")
	f.BoolVar(&flagAO, "ao", false, "Insert an ambient occlusion node into the BaseColor chain")
	f.BoolVar(&flagGame, "game-split", false, "Route Roughness/Opacity through a color splitter (channel R)")
	f.BoolVar(&flagCopy, "copy-textures", false, "Copy matched textures next to the material before assembly")
}

var rootCmd = &cobra.Command{
	Use:   "matforge [folder]",
	Short: "Group texture files into sets and assemble material node graphs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, engineOpts, err := buildRequest(cmd, args[0])
		if err != nil {
			return err
		}

		log, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		engineOpts.Host = forge.SQLiteHost{Dir: outDir}
		engineOpts.Log = log
		engine := forge.NewEngine(engineOpts)

		mats, err := engine.Run(req)
		if err != nil {
			return err
		}

		results := make([]api.Result, 0, len(mats))
		for _, ident := range sortedKeys(mats) {
			mat := mats[ident]
			results = append(results, mat.Result())
			if c, ok := mat.Graph.(io.Closer); ok {
				_ = c.Close()
			}
			if !jsonOutput {
				fmt.Printf("created %s -> %s\n",
					mat.Name, filepath.Join(outDir, mat.Name+".db"))
			}
		}
		if jsonOutput {
			fmt.Println(oj.JSON(results, 2))
		}
		return nil
	},
}

// buildRequest merges the profile (if any) with command-line overrides.
func buildRequest(cmd *cobra.Command, folder string) (api.Request, forge.Options, error) {
	var req api.Request
	var opts forge.Options

	if profilePath != "" {
		p, err := config.Load(profilePath)
		if err != nil {
			return req, opts, err
		}
		req = p.Request(folder)
		opts.Policy = p.IdentifierPolicy()
		opts.Strict = p.Strict
	} else {
		req = api.Request{Folder: folder}
	}

	if cmd.Flags().Changed("name") || req.MaterialNameBase == "" {
		req.MaterialNameBase = materialName
	}
	if cmd.Flags().Changed("policy") {
		pol, ok := texset.ParsePolicy(policyName)
		if !ok {
			return req, opts, fmt.Errorf("unknown policy %q", policyName)
		}
		opts.Policy = pol
	}
	if cmd.Flags().Changed("strict") {
		opts.Strict = strictGroup
	}
	if cmd.Flags().Changed("ao") {
		req.Flags.AmbientOcclusion = flagAO
	}
	if cmd.Flags().Changed("game-split") {
		req.Flags.GameAssetSplit = flagGame
	}
	if cmd.Flags().Changed("copy-textures") {
		req.Flags.CopyTextures = flagCopy
	}
	return req, opts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
