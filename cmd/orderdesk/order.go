package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/click2print/orderdesk/internal/model"
	"github.com/click2print/orderdesk/internal/orderstore"
	"github.com/click2print/orderdesk/internal/storage"
)

func newOrderCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect and edit the order draft",
	}

	var clearFields []string
	set := &cobra.Command{
		Use:   "set key=value...",
		Short: "Merge fields into the draft",
		Example: "  orderdesk order set clientName=Acme labourCost=120 discount=10\n" +
			"  orderdesk order set --clear urgency",
		RunE: a.withStore(func(cmd *cobra.Command, args []string, store *orderstore.Store) error {
			patch, err := parseAssignments(args, clearFields)
			if err != nil {
				return err
			}
			if len(patch) == 0 {
				return errors.New("nothing to set")
			}
			store.Update(patch)
			return printJSON(cmd.OutOrStdout(), store.Get())
		}),
	}
	set.Flags().StringSliceVar(&clearFields, "clear", nil, "fields to clear")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the draft as JSON",
			Args:  cobra.NoArgs,
			RunE: a.withStore(func(cmd *cobra.Command, _ []string, store *orderstore.Store) error {
				return printJSON(cmd.OutOrStdout(), store.Get())
			}),
		},
		set,
		&cobra.Command{
			Use:   "attach name:size[:type]...",
			Short: "Append client requirement files",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.withStore(func(cmd *cobra.Command, args []string, store *orderstore.Store) error {
				files := make([]model.UploadMeta, 0, len(args))
				for _, arg := range args {
					meta, err := parseFileArg(arg)
					if err != nil {
						return err
					}
					files = append(files, meta)
				}
				store.AppendIntakeFiles(files...)
				return printJSON(cmd.OutOrStdout(), store.Get().OrderIntakeFiles)
			}),
		},
		&cobra.Command{
			Use:   "clear-files",
			Short: "Remove every client requirement file",
			Args:  cobra.NoArgs,
			RunE: a.withStore(func(_ *cobra.Command, _ []string, store *orderstore.Store) error {
				store.ClearIntakeFiles()
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Replace the draft with an empty one",
			Args:  cobra.NoArgs,
			RunE: a.withStore(func(_ *cobra.Command, _ []string, store *orderstore.Store) error {
				store.Reset()
				return nil
			}),
		},
		&cobra.Command{
			Use:   "quote",
			Short: "Print the price breakdown",
			Args:  cobra.NoArgs,
			RunE: a.withStore(func(cmd *cobra.Command, _ []string, store *orderstore.Store) error {
				return printJSON(cmd.OutOrStdout(), store.Quote())
			}),
		},
		&cobra.Command{
			Use:   "comment <orderID> [text...]",
			Short: "Set the internal note for an order; no text removes it",
			Args:  cobra.MinimumNArgs(1),
			RunE: a.withStore(func(_ *cobra.Command, args []string, store *orderstore.Store) error {
				store.SetInternalComment(args[0], strings.Join(args[1:], " "))
				return nil
			}),
		},
		newDesignerCommand(a),
		&cobra.Command{
			Use:   "watch",
			Short: "Print the draft whenever another process changes it",
			Args:  cobra.NoArgs,
			RunE:  a.runWatch,
		},
	)
	return cmd
}

func newDesignerCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "designer",
		Short: "Manage the per-order designer manifest",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <orderID> name:size[:type]...",
			Short: "Add files to an order's manifest",
			Args:  cobra.MinimumNArgs(2),
			RunE: a.withStore(func(cmd *cobra.Command, args []string, store *orderstore.Store) error {
				items := make([]model.DesignerUpload, 0, len(args)-1)
				for _, arg := range args[1:] {
					meta, err := parseFileArg(arg)
					if err != nil {
						return err
					}
					items = append(items, designerUpload(meta))
				}
				return printJSON(cmd.OutOrStdout(), store.AddDesignerUploads(args[0], items...))
			}),
		},
		&cobra.Command{
			Use:   "rm <orderID> <uploadID>",
			Short: "Remove a file from an order's manifest",
			Args:  cobra.ExactArgs(2),
			RunE: a.withStore(func(_ *cobra.Command, args []string, store *orderstore.Store) error {
				if !store.RemoveDesignerUpload(args[0], args[1]) {
					return fmt.Errorf("no upload %q for order %q", args[1], args[0])
				}
				return nil
			}),
		},
	)
	return cmd
}

// withStore opens the configured storage and the draft for a subcommand.
func (a *app) withStore(run func(cmd *cobra.Command, args []string, store *orderstore.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, release, err := a.openStorage(ctx)
		if err != nil {
			return err
		}
		defer release()

		store, err := a.openStore(ctx, st)
		if err != nil {
			return err
		}
		return run(cmd, args, store)
	}
}

func (a *app) openStore(ctx context.Context, st storage.Storage) (*orderstore.Store, error) {
	return orderstore.Open(ctx, st,
		orderstore.WithLogger(a.logger),
		orderstore.WithKey(a.cfg.Store.Key),
		orderstore.WithSaveTimeout(a.cfg.Store.SaveTimeout),
	)
}

// watcher is implemented by storages that can report changes made by other
// processes.
type watcher interface {
	Watch(ctx context.Context, key string, onChange func()) error
}

var _ watcher = (*storage.FileStorage)(nil)

// runWatch prints the draft, then reloads and prints it again every time the
// slot changes on disk, until the command is interrupted.
func (a *app) runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, release, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer release()

	w, ok := st.(watcher)
	if !ok {
		return fmt.Errorf("watch is not supported by the %s backend", a.cfg.Store.Backend)
	}

	store, err := a.openStore(ctx, st)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	unsubscribe := store.Subscribe(func(f model.FormData) {
		if err := printJSON(out, f); err != nil {
			a.logger.Warn("failed to print draft", "error", err)
		}
	})
	defer unsubscribe()

	if err := printJSON(out, store.Get()); err != nil {
		return err
	}

	return w.Watch(ctx, a.cfg.Store.Key, func() {
		if err := store.Rehydrate(ctx); err != nil {
			a.logger.Warn("failed to reload order draft", "error", err)
		}
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
