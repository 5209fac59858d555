package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/captionvoice/internal/cli"
	"codeberg.org/snonux/captionvoice/internal/gui"
	"codeberg.org/snonux/captionvoice/internal/models"
	"codeberg.org/snonux/captionvoice/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	// Handle --list-languages flag
	if flags.ListLanguages {
		processor.PrintLanguages(os.Stdout)
		return nil
	}

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	settings, err := cli.LoadSettings()
	if err != nil {
		return err
	}

	// The GUI shows log lines in its own panel
	var logs *gui.LogBuffer
	var extra []io.Writer
	if len(args) == 0 {
		logs = gui.NewLogBuffer()
		extra = append(extra, logs)
	}

	logger, err := cli.NewLogger(settings.LogLevel, os.Stderr, extra...)
	if err != nil {
		return err
	}

	proc, err := processor.NewProcessor(ctx, flags, settings, logs, logger)
	if err != nil {
		return err
	}
	defer proc.Close()

	if len(args) > 0 {
		if err := proc.ProcessImage(ctx, args[0], flags.Speak); err != nil {
			return err
		}
		fmt.Println("\nDone!")
		return nil
	}

	// No input provided - launch GUI mode by default
	return proc.RunGUIMode()
}
