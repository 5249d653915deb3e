package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage saved system prompts",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved system prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := application.SystemPrompts.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, name := range names {
			writeLine(cmd, name)
		}
		return nil
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved system prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := application.SystemPrompts.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		writeLine(cmd, text)
		return nil
	},
}

var promptsSaveCmd = &cobra.Command{
	Use:   "save <name> <text>",
	Short: "Save a system prompt under name",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.SystemPrompts.Save(cmd.Context(), args[0], strings.Join(args[1:], " "))
	},
}

var promptsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved system prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.SystemPrompts.Delete(cmd.Context(), args[0])
	},
}

var promptsApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Use a saved system prompt for new replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.SystemPrompts.Apply(cmd.Context(), args[0])
	},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd, promptsShowCmd, promptsSaveCmd, promptsDeleteCmd, promptsApplyCmd)
	rootCmd.AddCommand(promptsCmd)
}
