package main

import (
	"io/fs"

	"github.com/spf13/cobra"
	"github.com/walteh/rplc/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// 📜 newApplyCmd runs the operations of a manifest file
func newApplyCmd(s *streams, global *globalFlags) *cobra.Command {
	var (
		manifest string
		rf       runFlags
		inf      inputFlags
	)

	cmd := &cobra.Command{
		Use:   "apply [PATH...]",
		Short: "Run the operations listed in a manifest",
		Long: `Apply loads a YAML, JSON or HCL manifest and runs its operations, in order,
over the inputs. Run flags given on the command line override the manifest.`,
		Example: `  rplc apply --manifest rename.yaml src/*.go
  git ls-files -z | rplc apply --files0 --dry-run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := config.Load(cmd.Context(), manifest)
			if errors.Is(err, fs.ErrNotExist) {
				return errors.Errorf("%w: manifest %s does not exist", errUsage, manifest)
			}
			if err != nil {
				return errors.Errorf("loading manifest: %w", err)
			}

			p, err := m.Pipeline()
			if err != nil {
				return err
			}
			if err := rf.apply(cmd.Flags(), &p); err != nil {
				return err
			}

			return execute(cmd, s, *global, inf, "apply", p, args)
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", config.DefaultManifest, "manifest file (.yaml, .yml, .json, .hcl or .rplc)")
	addRunFlags(cmd.Flags(), &rf)
	addInputFlags(cmd.Flags(), &inf)

	return cmd
}
