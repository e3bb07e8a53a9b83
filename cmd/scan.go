package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shadekit/matforge/internal/forge"
	"github.com/shadekit/matforge/internal/texset"
)

var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "Dry run: group textures into sets without creating materials",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, engineOpts, err := buildRequest(cmd, args[0])
		if err != nil {
			return err
		}
		engineOpts.Log = zap.NewNop()
		engine := forge.NewEngine(engineOpts)

		sets, err := engine.Group(req)
		if err != nil {
			return err
		}

		type scanSet struct {
			Identifier   string            `json:"identifier"`
			MaterialName string            `json:"material_name"`
			Channels     map[string]string `json:"channels"`
		}
		out := make([]scanSet, 0, len(sets))
		for _, ident := range sortedKeys(sets) {
			set := sets[ident]
			channels := make(map[string]string)
			for _, ch := range texset.Channels() {
				if set.Present(ch) {
					channels[ch.String()] = set.Path(ch)
				}
			}
			out = append(out, scanSet{
				Identifier:   ident,
				MaterialName: set.MaterialName,
				Channels:     channels,
			})
		}
		fmt.Println(oj.JSON(out, 2))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
