package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanizio/formguard/internal/event"
	"github.com/yanizio/formguard/internal/form"
	"github.com/yanizio/formguard/internal/notify"
)

func newEvalCmd(flags *rootFlags) *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "eval <form> [name=value ...]",
		Short: "Run one submission (or one field check) through a guard",
		Long: `Builds the named form's guard, snapshots the given name=value pairs as
the submitted fields, and prints the verdict.  Checkboxes take on/off.
With --field only that field's rules run, as on blur.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := flags.registry()
			if err != nil {
				return err
			}
			fd, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}
			src, err := parsePairs(args[1:])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rec := notify.NewRecorder()
			accept := form.HandlerFunc(func(_ context.Context, _ string, v form.Values) error {
				b, err := json.Marshal(fd.Public(v))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "accepted %s\n", b)
				return nil
			})
			g := form.NewGuard(fd, accept, notify.Multi{&notify.Writer{W: out}, rec})

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if field != "" {
				ev := event.New(event.Blur, field, src)
				ev.Form = fd.ID
				res, err := g.CheckField(ctx, ev)
				if err != nil {
					return err
				}
				if res.OK() {
					fmt.Fprintf(out, "%s.%s: ok\n", fd.ID, field)
				}
			} else if _, err := g.Submit(ctx, event.New(event.Submit, fd.ID, src)); err != nil {
				return err
			}

			if rec.Count() > 0 {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&field, "field", "f", "", "check a single field instead of submitting")
	return cmd
}

// parsePairs turns name=value arguments into a field source.  A later pair
// for the same name wins.
func parsePairs(args []string) (event.MapSource, error) {
	src := make(event.MapSource, len(args))
	for _, a := range args {
		name, val, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("argument %q is not name=value", a)
		}
		src[name] = val
	}
	return src, nil
}
