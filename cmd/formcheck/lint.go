package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanizio/formguard/internal/form"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <dir>",
		Short: "Validate every YAML form definition under dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			seen := map[string]string{} // form ID → first file
			var checked, failed int

			err := filepath.WalkDir(args[0], func(p string, d fs.DirEntry, walkErr error) error {
				if walkErr != nil {
					return walkErr
				}
				ext := strings.ToLower(filepath.Ext(p))
				if d.IsDir() || (ext != ".yaml" && ext != ".yml") {
					return nil
				}
				checked++

				fd, err := form.LoadFormDef(p)
				if err == nil {
					if first, dup := seen[fd.ID]; dup {
						err = fmt.Errorf("form id %q already defined in %s", fd.ID, first)
					} else {
						seen[fd.ID] = p
					}
				}
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", p, err)
					return nil
				}
				fmt.Fprintf(out, "ok   %s (%s)\n", p, fd.ID)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%d checked, %d failed\n", checked, failed)
			if failed > 0 {
				return fmt.Errorf("%d definition(s) failed lint", failed)
			}
			return nil
		},
	}
}
