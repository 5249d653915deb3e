package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/usecase"
	"github.com/spf13/cobra"
)

const stdio = "-"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show, change, export and import settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show [namespace]",
	Short: "Print all settings or one namespace as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			raw, err := application.Settings.GetNamespace(ctx, args[0])
			if err != nil {
				return err
			}
			writeLine(cmd, string(raw))
			return nil
		}

		settings, err := application.Settings.GetAll(ctx)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		writeLine(cmd, string(out))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <namespace> <json>",
	Short: "Replace one settings namespace",
	Long: `Replace one settings namespace with a JSON value, for example:

  mail-assistant settings set chat '{"apiUrl":"https://api.openai.com/v1/chat/completions","apiKey":"sk-...","model":"gpt-4o-mini"}'
  mail-assistant settings set tone '"friendly"'

Fields left out get their defaults.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.NewRequest(cmd.Context(), "settings_set")
		return application.Settings.SetNamespace(ctx, args[0], json.RawMessage(args[1]))
	},
}

var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all settings, API keys included",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.NewRequest(cmd.Context(), "settings_export")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = usecase.ExportFileName(time.Now())
		}
		if out == stdio {
			return application.Settings.Export(ctx, cmd.OutOrStdout())
		}

		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		if err = application.Settings.Export(ctx, f); err != nil {
			_ = f.Close()
			return err
		}
		if err = f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		writeLine(cmd, translator(ctx).Format(usecase.MessageSettingsExported, out))
		return nil
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all settings with an exported file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.NewRequest(cmd.Context(), "settings_import")
		var r io.Reader = cmd.InOrStdin()
		if args[0] != stdio {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}
		if err := application.Settings.Import(ctx, r); err != nil {
			return err
		}
		writeLine(cmd, translator(ctx).T(usecase.MessageSettingsImported))
		return nil
	},
}

func init() {
	settingsExportCmd.Flags().String("out", "", `output file, "-" for stdout (default ai-mail-assistant-settings-<date>.json)`)

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsExportCmd, settingsImportCmd)
	rootCmd.AddCommand(settingsCmd)
}
