package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/yanizio/formguard/components/forms/defs"
	"github.com/yanizio/formguard/internal/form"
)

// errRejected signals a rejected eval; the message is already printed.
var errRejected = errors.New("submission rejected")

type rootFlags struct {
	dirs       []string
	noEmbedded bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "formcheck",
		Short:         "Inspect and exercise form definitions offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringSliceVarP(&flags.dirs, "dir", "d", nil, "extra definition directory (repeatable)")
	root.PersistentFlags().BoolVar(&flags.noEmbedded, "no-embedded", false, "skip the built-in sample forms")

	root.AddCommand(
		newListCmd(flags),
		newEvalCmd(flags),
		newLintCmd(),
	)
	return root
}

// registry loads the embedded samples, then each --dir in order.
func (f *rootFlags) registry() (*form.Registry, error) {
	reg := form.NewRegistry()
	if !f.noEmbedded {
		if _, err := reg.LoadFS(defs.FS, "."); err != nil {
			return nil, err
		}
	}
	for _, d := range f.dirs {
		if _, err := reg.LoadDir(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
