// Package main provides the voxa CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/voxahq/voxa/cli"
)

var (
	// Global flags
	provider string
	profile  string
	dbPath   string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "voxa",
		Short: "Voice and chat assistant with tool use",
		Long: `An interruptible voice/chat assistant.

Utterances run through a three-step tool pipeline (classify intent,
extract arguments, execute) before a response model answers. Any stage,
including speech playback, can be cut off by new input. Conversations
persist per profile.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "ollama", "LLM provider (openai, anthropic, gemini, ollama)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Profile for conversation persistence")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default ~/.voxa/voxa.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(voiceCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(onceCmd())
	rootCmd.AddCommand(profilesCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider: provider,
		Profile:  profile,
		DBPath:   dbPath,
		Verbose:  verbose,
	}
}

// signalContext cancels on Ctrl+C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func voiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voice",
		Short: "Start the interactive voice loop",
		Long: `Listen for utterances and answer out loud.

The microphone reopens after each reply; speaking while the assistant
is still talking cuts it off and starts a fresh turn. Requires a
microphone, a player (ffplay or mpv), and OPENAI_API_KEY for
transcription.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return cli.Voice(ctx, options())
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return cli.Chat(ctx, options())
		},
	}
}

func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once [text]",
		Short: "Process a single utterance and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return cli.Once(ctx, args[0], options())
		},
	}
}

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List stored profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Profiles(context.Background(), options())
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verboseTools)
		},
	}
	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")
	return cmd
}
