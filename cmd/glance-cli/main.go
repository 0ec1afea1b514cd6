package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"glance/internal/config"
	"glance/internal/imglist"
	"glance/internal/loader"
	"glance/internal/scan"
)

var (
	orderFlag     string
	recursiveFlag bool
)

func cliLogger(msg string) {
	log.Printf("[glance-cli] %s", msg)
}

// NewRootCmd creates the root command for the CLI application.
func NewRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "glance-cli",
		Short:         "Glance CLI - inspect image sources without a viewer session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&orderFlag, "order", "name", "insertion order: none|name|numeric|mtime|size|random")
	rootCmd.PersistentFlags().BoolVar(&recursiveFlag, "recursive", true, "descend into subdirectories")

	// List command: scan a directory and print the ordered image list.
	listCmd := &cobra.Command{
		Use:   "list [directory]",
		Short: "Scan a directory and print the ordered image list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := imglist.ParseOrder(orderFlag)
			if err != nil {
				return err
			}
			list := imglist.New(order, cliLogger)
			for item := range scan.Run(args[0], recursiveFlag, cliLogger) {
				list.Add(imglist.Source(item.Path), item.Info)
			}
			if list.Len() == 0 {
				cmd.Println("No images found.")
				return nil
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"#", "Source", "Size", "Modified"})
			for e := list.First(); e != nil; e = list.Next(e, false) {
				t.AppendRow(table.Row{e.Ordinal, e.Source, e.Size, e.Mtime.Format("2006-01-02 15:04:05")})
			}
			t.Render()
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	// Probe command: acquire and decode a single source.
	probeCmd := &cobra.Command{
		Use:   "probe [source]",
		Short: "Decode one source (path, '-' for stdin, or 'exec:<command>') and print what was found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if source == loader.StdinSource && isatty.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("refusing to read image bytes from a terminal; pipe data in or name a file")
			}
			if source != loader.StdinSource && !imglist.Source(source).IsExec() {
				abs, err := filepath.Abs(source)
				if err != nil {
					return err
				}
				source = abs
			}
			reg := loader.DefaultRegistry(cliLogger)
			img, status, err := reg.FromSource(cmd.Context(), source)
			if status != loader.Success {
				return fmt.Errorf("probe %s (%s): %w", source, status, err)
			}
			cmd.Printf("%s: %dx%d, %d frame(s)\n", source, img.Width, img.Height, len(img.Frames))
			for _, m := range img.Meta {
				cmd.Printf("  %s: %s\n", m.Key, m.Value)
			}
			return nil
		},
	}
	rootCmd.AddCommand(probeCmd)

	// Decoders command: print the chain in priority order.
	decodersCmd := &cobra.Command{
		Use:   "decoders",
		Short: "Print the decoder chain in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := loader.DefaultRegistry(cliLogger)
			for i, name := range reg.Decoders() {
				cmd.Printf("%d. %s\n", i+1, name)
			}
			return nil
		},
	}
	rootCmd.AddCommand(decodersCmd)

	// Config command: print the effective normalized configuration.
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := imglist.ParseOrder(orderFlag)
			if err != nil {
				return err
			}
			cfg := config.Default()
			cfg.Order = order
			cfg.Recursive = recursiveFlag
			cfg = cfg.Normalize()
			cmd.Printf("order: %s\n", cfg.Order)
			cmd.Printf("loop: %v\n", cfg.Loop)
			cmd.Printf("recursive: %v\n", cfg.Recursive)
			cmd.Printf("history capacity: %d\n", cfg.HistoryCap)
			cmd.Printf("preload capacity: %d\n", cfg.PreloadCap)
			cmd.Printf("auto-advance interval: %s\n", cfg.SlideInterval)
			return nil
		},
	}
	rootCmd.AddCommand(configCmd)

	return rootCmd
}

var rootCmd = NewRootCmd()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
