// Command isagen regenerates the amd64 backend's generated source
// (internal/backend/isa/amd64/zisa.go) from the declared instruction table.
package main

import (
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xyproto/env/v2"

	"github.com/creelvm/creel/internal/backend/isa/amd64"
	"github.com/creelvm/creel/internal/isagen"
)

func main() {
	var (
		out     string
		dump    bool
		verbose bool
	)

	log := logrus.New()
	log.SetOutput(os.Stderr)

	cmd := &cobra.Command{
		Use:           "isagen",
		Short:         "regenerate the amd64 instruction encoders from the declared table",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			insts := amd64.InstructionSet()
			log.WithField("instructions", len(insts)).Debug("loaded instruction table")

			if dump {
				spew.Fdump(os.Stderr, insts)
			}

			f, err := os.Create(out)
			if err != nil {
				return errors.Wrap(err, "creating output file")
			}
			if err := isagen.Generate(f, insts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "closing output file")
			}
			log.WithField("out", out).Info("generated")
			return nil
		},
	}

	registerFlags(cmd.Flags(), &out, &dump, &verbose)

	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func registerFlags(flags *pflag.FlagSet, out *string, dump, verbose *bool) {
	flags.StringVar(out, "out", env.Str("ISAGEN_OUT", "internal/backend/isa/amd64/zisa.go"), "path of the generated file")
	flags.BoolVar(dump, "dump", false, "dump the parsed instruction table to stderr")
	flags.BoolVarP(verbose, "verbose", "v", false, "enable debug logging")
}
