package cmd

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/iamvkosarev/ai-mail-assistant/internal/usecase"
	"github.com/iamvkosarev/ai-mail-assistant/pkg/local"
	"github.com/spf13/cobra"
)

var replyCmd = &cobra.Command{
	Use:   "reply [instructions]",
	Short: "Generate a reply to the open message or draft",
	Long: `Generate a reply to the open draft, or to the displayed message when no draft
is open. In a draft the reply is added below the current text; for a displayed
message a new reply draft is started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.NewRequest(cmd.Context(), "reply")
		auto, _ := cmd.Flags().GetBool("auto")
		useLast, _ := cmd.Flags().GetBool("last")
		dictate, _ := cmd.Flags().GetBool("dictate")
		duration, _ := cmd.Flags().GetDuration("duration")
		tr := translator(ctx)

		instructions := strings.Join(args, " ")
		switch {
		case auto:
		case dictate:
			text, err := dictateInstructions(cmd, duration)
			if err != nil {
				return err
			}
			instructions = text
		case useLast && strings.TrimSpace(instructions) == "":
			last, err := application.Settings.LastPrompt(ctx)
			if err != nil {
				return err
			}
			instructions = last
		}

		result, err := application.Assistant.GenerateReply(
			ctx, usecase.ReplyRequest{
				Instructions: instructions,
				Auto:         auto,
			},
		)
		if err != nil {
			return err
		}

		writeLine(cmd, result.Content)
		writeLine(cmd)
		if result.Insertion.NewReply {
			writeLine(cmd, tr.Format(usecase.MessageReplyStarted, result.Insertion.Handle))
		} else {
			writeLine(cmd, tr.Format(usecase.MessageReplyInserted, result.Insertion.Handle))
		}
		printStats(cmd, tr, &result.Stats, result.GeneratedEmails)
		return nil
	},
}

var dictateCmd = &cobra.Command{
	Use:   "dictate",
	Short: "Record instructions and keep them as the last prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetDuration("duration")
		text, err := dictateInstructions(cmd, duration)
		if err != nil {
			return err
		}
		writeLine(cmd, text)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Forget the last instructions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.Assistant.ClearPrompt(logger.NewRequest(cmd.Context(), "cancel"))
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the statistics of the last generated reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stats, err := application.Settings.LastStats(ctx)
		if err != nil {
			return err
		}
		generated, err := application.Settings.GeneratedEmails(ctx)
		if err != nil {
			return err
		}
		printStats(cmd, translator(ctx), stats, generated)
		return nil
	},
}

// dictateInstructions records until the duration is over or the user presses Ctrl+C.
func dictateInstructions(cmd *cobra.Command, duration time.Duration) (string, error) {
	ctx := logger.NewRequest(cmd.Context(), "dictate")
	recordCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	writeLine(cmd, translator(ctx).T(usecase.MessageRecordingStarted))
	return application.Transcription.Dictate(recordCtx, duration)
}

func printStats(cmd *cobra.Command, tr *local.Translator, stats *model.GenerationStats, generated int) {
	if stats == nil {
		writeLine(cmd, tr.T(usecase.MessageStatsNone))
	} else {
		writeLine(cmd, tr.Format(usecase.MessageStatsModel, stats.Model))
		writeLine(cmd, tr.Format(usecase.MessageStatsTokens, stats.InputTokens, stats.OutputTokens))
		writeLine(cmd, tr.Format(usecase.MessageStatsTime, stats.Time))
		writeLine(cmd, tr.Format(usecase.MessageStatsCost, stats.Cost))
	}
	writeLine(cmd, tr.Format(usecase.MessageStatsGenerated, generated))
}

func init() {
	replyCmd.Flags().Bool("auto", false, "answer with the built-in autoresponse instruction")
	replyCmd.Flags().Bool("last", false, "reuse the last instructions when none are given")
	replyCmd.Flags().Bool("dictate", false, "dictate the instructions")
	replyCmd.Flags().Duration("duration", 0, "maximum dictation length (default from config)")
	replyCmd.MarkFlagsMutuallyExclusive("auto", "dictate")
	dictateCmd.Flags().Duration("duration", 0, "maximum dictation length (default from config)")

	rootCmd.AddCommand(replyCmd, dictateCmd, cancelCmd, statsCmd)
}
