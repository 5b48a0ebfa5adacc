package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docslice/internal/config"
	"github.com/dgallion1/docslice/internal/repair"
)

func newRepairCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repair [dir]",
		Short: "Rename .doc/.docx files whose extension does not match their content",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose := true
			var dir string
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				dir = cfg.Paths.InputFolder
				verbose = cfg.Processing.Verbose
			}

			outcomes, err := repair.Dir(dir, newLogger(verbose))
			if err != nil {
				return err
			}
			renamed := 0
			for _, o := range outcomes {
				if o.Action == repair.ActionRenamed {
					renamed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "examined=%d renamed=%d\n", len(outcomes), renamed)
			return nil
		},
	}
}
