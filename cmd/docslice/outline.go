package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docslice/internal/config"
	"github.com/dgallion1/docslice/internal/docsvc"
	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/engine"
)

func newOutlineCmd(configPath *string) *cobra.Command {
	var styles string
	cmd := &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the heading tree of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set := doctree.NewStyleSet(config.SplitList(styles)...)
			if styles == "" {
				if cfg, err := config.Load(*configPath); err == nil {
					set = cfg.HeadingStyles()
				}
			}
			log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			return printOutline(cmd.OutOrStdout(), args[0], set, log)
		},
	}
	cmd.Flags().StringVar(&styles, "heading-styles", "", "comma-separated heading style prefixes (default from config)")
	return cmd
}

func printOutline(w io.Writer, path string, styles doctree.StyleSet, log *slog.Logger) error {
	svc := docsvc.New(engine.DefaultRegistry(), log)
	defer svc.Shutdown()

	h, records, err := svc.Open(path)
	if err != nil {
		return err
	}
	defer svc.Close(h, true)

	forest, err := doctree.Build(records, styles)
	if err != nil {
		return err
	}
	length, err := svc.Length(h)
	if err != nil {
		return err
	}

	for _, n := range doctree.Flatten(forest) {
		fmt.Fprintf(w, "%s%s (level %d, offset %d)\n", strings.Repeat("  ", n.Level-1), n.Title, n.Level, n.Offset)
	}
	fmt.Fprintf(w, "length %d\n", length)
	return nil
}
