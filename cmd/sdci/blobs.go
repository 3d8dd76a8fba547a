package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/sdci"
	"github.com/hupe1980/sdci/blobstore"
	"github.com/hupe1980/sdci/persistence"
	"github.com/spf13/cobra"
)

var errNoStore = errors.New("the file backend has no snapshot store; configure local, minio or s3 storage")

func (a *app) store(ctx context.Context) (blobstore.BlobStore, error) {
	store, err := openStore(ctx, a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errNoStore
	}
	return store, nil
}

func (a *app) lsCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls [PREFIX]",
		Short: "List the snapshots in the configured store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}

			names, err := store.List(ctx, prefix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if !long {
					fmt.Fprintln(out, name)
					continue
				}
				blob, err := store.Open(ctx, name)
				if err != nil {
					return err
				}
				size := blob.Size()
				_ = blob.Close()
				fmt.Fprintf(out, "%10s  %s\n", humanize.IBytes(uint64(max(size, 0))), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "print blob sizes")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME...",
		Short: "Delete snapshots from the configured store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			for _, name := range args {
				if err := store.Delete(ctx, name); err != nil {
					return fmt.Errorf("delete %s: %w", name, err)
				}
				a.logger.Info("snapshot deleted", "name", name)
			}
			return nil
		},
	}
}

// pushCmd uploads a snapshot file. The file is decoded first so that only
// valid snapshots reach the store.
func (a *app) pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push FILE [NAME]",
		Short: "Upload a snapshot file to the configured store",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			name := filepath.Base(args[0])
			if len(args) == 2 {
				name = args[1]
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var ix sdci.Index
			if err := ix.UnmarshalBinary(data); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := store.Put(ctx, name, data); err != nil {
				return fmt.Errorf("put %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s (%s, %s symbols)\n",
				name, humanize.IBytes(uint64(len(data))), humanize.Comma(int64(ix.Len())))
			return nil
		},
	}
}

func (a *app) pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull NAME FILE",
		Short: "Download a snapshot from the configured store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.store(ctx)
			if err != nil {
				return err
			}

			blob, err := store.Open(ctx, args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer blob.Close()

			r, err := blobstore.NewReader(ctx, blob)
			if err != nil {
				return err
			}
			defer r.Close()

			var n int64
			err = persistence.SaveToFile(args[1], func(w io.Writer) error {
				var cerr error
				n, cerr = io.Copy(w, r)
				return cerr
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pulled %s (%s)\n", args[0], humanize.IBytes(uint64(n)))
			return nil
		},
	}
}
