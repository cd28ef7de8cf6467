package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/caasmo/actiondispatch"
	"github.com/caasmo/actiondispatch/core"
	"github.com/spf13/cobra"
)

func routesCmd(configPath *string) *cobra.Command {
	var showClasses bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the registered routes",
		Long:  `Load the config and print every route in registration order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := actiondispatch.NewFromFile(*configPath, classOptions()...)
			if err != nil {
				return err
			}
			printRoutes(cmd.OutOrStdout(), d.Table().Actions(""))
			if showClasses {
				fmt.Fprintln(cmd.OutOrStdout())
				printClasses(cmd.OutOrStdout(), d.ClassNames())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showClasses, "classes", false, "also list the registered classes")
	return cmd
}

func printRoutes(w io.Writer, actions []*core.Action) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATTERN\tTARGET\tMIDDLEWARE")
	for _, a := range actions {
		names := make([]string, 0, len(a.Middleware()))
		for _, m := range a.Middleware() {
			names = append(names, m.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", strings.ToUpper(a.Method()), a.Pattern(), a.Target(), strings.Join(names, ","))
	}
	tw.Flush()
}

func printClasses(w io.Writer, classes map[string]string) {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tTYPE")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, classes[name])
	}
	tw.Flush()
}
