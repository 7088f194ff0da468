package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/biclique/archive"
	"github.com/hupe1980/biclique/resultstore"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type storeFlags struct {
	store string
	dir   string
}

func (f *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.store, "store", "", "archive store (local, minio, s3)")
	fs.StringVar(&f.dir, "dir", "", "directory of the local store")
}

// output loads the configured output section with flag overrides applied.
func (f *storeFlags) output(fs *pflag.FlagSet, root *rootFlags) (OutputConfig, error) {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return OutputConfig{}, err
	}
	if fs.Changed("store") {
		cfg.Output.Store = f.store
	}
	if fs.Changed("dir") {
		cfg.Output.Dir = f.dir
	}
	if cfg.Output.Store == "none" {
		return OutputConfig{}, errors.New("no archive store configured")
	}
	return cfg.Output, nil
}

func newListCmd(root *rootFlags) *cobra.Command {
	sf := &storeFlags{}

	cmd := &cobra.Command{
		Use:   "list [prefix]",
		Short: "List archives in the configured store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := sf.output(cmd.Flags(), root)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), out)
			if err != nil {
				return err
			}

			prefix := "runs/"
			if len(args) == 1 {
				prefix = args[0]
			}
			names, err := store.List(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	sf.register(cmd.Flags())
	return cmd
}

func newInspectCmd(root *rootFlags) *cobra.Command {
	sf := &storeFlags{}
	var (
		file      bool
		asJSON    bool
		bicliques bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Decode an archive and print its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				rec *archive.Record
				h   archive.Header
				err error
			)
			if file {
				rec, h, err = decodeFile(args[0])
			} else {
				var out OutputConfig
				if out, err = sf.output(cmd.Flags(), root); err != nil {
					return err
				}
				var store resultstore.Store
				if store, err = openStore(cmd.Context(), out); err != nil {
					return err
				}
				rec, h, err = resultstore.LoadRecord(cmd.Context(), store, args[0])
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			printRecord(w, rec, h, bicliques)
			return nil
		},
	}
	sf.register(cmd.Flags())
	cmd.Flags().BoolVarP(&file, "file", "f", false, "treat the argument as a file path instead of a store name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decoded record as JSON")
	cmd.Flags().BoolVar(&bicliques, "bicliques", false, "print every surviving biclique")
	return cmd
}

func decodeFile(path string) (*archive.Record, archive.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, archive.Header{}, err
	}
	defer f.Close()
	return archive.Decode(f)
}

func printRecord(w io.Writer, rec *archive.Record, h archive.Header, bicliques bool) {
	fmt.Fprintf(w, "run:         %s\n", rec.RunID)
	fmt.Fprintf(w, "created:     %s\n", rec.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "format:      v%d %s/%s, %d bytes\n", h.Version, h.Codec, h.Compression, h.PayloadLen)
	fmt.Fprintf(w, "max score:   %d\n\n", rec.MaxScore())

	printResults(w, rec.Results)

	if !bicliques {
		return
	}
	for _, r := range rec.Results {
		fmt.Fprintf(w, "\n%s %s:\n", r.CipherName, r.Window)
		for _, b := range r.Bicliques {
			fmt.Fprintf(w, "  %s\n", b)
		}
	}
}
