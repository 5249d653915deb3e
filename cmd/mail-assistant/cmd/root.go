package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/iamvkosarev/ai-mail-assistant/config"
	"github.com/iamvkosarev/ai-mail-assistant/internal/app"
	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/usecase"
	"github.com/iamvkosarev/ai-mail-assistant/pkg/local"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	cfg         *config.Config
	log         *logger.Logger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "mail-assistant",
	Short: "Write email replies with a chat completion API",
	Long: `mail-assistant reads the message or reply draft you have open, asks a chat
completion API for a reply and puts the answer into the draft.

Instructions can be typed or dictated through the microphone.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			loaded, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		applyMailboxFlags(cmd)
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Log.Level = level
		}

		log = logger.New(logger.FromConfig(cfg.Log.Level, cfg.Log.Format))
		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		application = a
		return nil
	},
}

// Execute runs the command line and exits with status 1 on failure.
func Execute() {
	msg, err := execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}

// execute renders the error while the app is open so the stored uiLanguage applies.
func execute() (string, error) {
	err := rootCmd.Execute()
	var msg string
	if err != nil {
		msg = usecase.UserMessage(err, translator(context.Background()))
	}
	closeApp()
	return msg, err
}

func closeApp() {
	if application == nil {
		return
	}
	if err := application.Close(); err != nil {
		log.Warn("failed to close app", "error", err)
	}
	application = nil
}

func translator(ctx context.Context) *local.Translator {
	if application != nil {
		return application.Settings.Translator(ctx)
	}
	if cfg != nil {
		return usecase.NewTranslator(cfg.Defaults.UILanguage)
	}
	return usecase.NewTranslator("")
}

func applyMailboxFlags(cmd *cobra.Command) {
	flags := map[string]*string{
		"message":    &cfg.Mailbox.MessagePath,
		"draft":      &cfg.Mailbox.ComposePath,
		"mail-dir":   &cfg.Mailbox.MailDir,
		"drafts-dir": &cfg.Mailbox.DraftsDir,
	}
	for name, target := range flags {
		if cmd.Flags().Changed(name) {
			*target, _ = cmd.Flags().GetString(name)
		}
	}
}

func writeLine(cmd *cobra.Command, a ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), a...)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to the config file")
	rootCmd.PersistentFlags().String("message", "", "displayed message (.eml)")
	rootCmd.PersistentFlags().String("draft", "", "open reply draft (.eml)")
	rootCmd.PersistentFlags().String("mail-dir", "", "directory of stored messages used for thread context")
	rootCmd.PersistentFlags().String("drafts-dir", "", "directory new reply drafts are written to")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error")
}
