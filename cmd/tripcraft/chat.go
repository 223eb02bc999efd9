package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tripcraft/internal/modules/assistant"
)

func newChatCmd() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the travel assistant",
		Long:  "Starts an interactive session with the travel assistant. Type 'exit' to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, window)
		},
	}

	cmd.Flags().IntVar(&window, "window", assistant.DefaultWindow, "turns of history sent with each message")
	return cmd
}

func runChat(cmd *cobra.Command, window int) error {
	out := cmd.OutOrStdout()

	selector, closeModels, err := loadModels(cmd.Context())
	if err != nil {
		return err
	}
	defer closeModels()

	a := assistant.NewAssistant(selector, window)
	fmt.Fprintf(out, "AI: %s\n", assistant.Greeting)
	if selector == nil {
		fmt.Fprintf(out, "AI: %s\n", assistant.UnavailableReply)
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(text) {
		case "":
			fmt.Fprintf(out, "AI: %s\n", assistant.ClarificationReply)
			continue
		case "exit", "quit":
			return nil
		}
		fmt.Fprintf(out, "AI: %s\n", a.SendMessage(cmd.Context(), text))
	}
}
