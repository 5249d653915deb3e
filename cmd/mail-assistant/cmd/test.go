package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/iamvkosarev/ai-mail-assistant/internal/logger"
	"github.com/iamvkosarev/ai-mail-assistant/internal/model"
	"github.com/iamvkosarev/ai-mail-assistant/internal/usecase"
	"github.com/spf13/cobra"
)

var apiTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check the configured APIs",
}

var testChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send a short request to the chat completion API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.NewRequest(cmd.Context(), "test_chat")
		tr := translator(ctx)
		chat, err := application.Settings.Chat(ctx)
		if err != nil {
			return err
		}
		completion, err := application.OpenAI.TestAPI(ctx, chat, tr)
		if err != nil {
			return err
		}
		writeLine(cmd, tr.Format(usecase.MessageApiTestSuccess, completion.Content))
		return nil
	},
}

var testSTTCmd = &cobra.Command{
	Use:   "stt",
	Short: "Send an audio sample to the speech-to-text API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.NewRequest(cmd.Context(), "test_stt")
		tr := translator(ctx)
		stt, err := application.Settings.STT(ctx)
		if err != nil {
			return err
		}

		var sample []byte
		if path, _ := cmd.Flags().GetString("sample"); path != "" {
			if sample, err = os.ReadFile(path); err != nil {
				return fmt.Errorf("failed to read sample %s: %w", path, err)
			}
		}

		text, err := application.Transcription.TestAPI(ctx, stt, sample)
		if errors.Is(err, model.ErrEmptyTranscript) && len(sample) == 0 {
			// silence has nothing to transcribe
			err = nil
		}
		if err != nil {
			return err
		}
		writeLine(cmd, tr.Format(usecase.MessageApiTestSuccess, text))
		return nil
	},
}

func init() {
	testSTTCmd.Flags().String("sample", "", "audio file to transcribe instead of a second of silence")

	apiTestCmd.AddCommand(testChatCmd, testSTTCmd)
	rootCmd.AddCommand(apiTestCmd)
}
