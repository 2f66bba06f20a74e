package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	chatConversation string
	chatAnswer       bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively in one conversation",
	Long: `Reads one question per line and answers it within a single
conversation, so follow-ups can refer to earlier questions.

Commands:
  /history  show the conversation so far
  /clear    forget the conversation
  /quit     leave (also Ctrl-D)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatConversation, "conversation", "c", "", "conversation to continue (default: a new one)")
	chatCmd.Flags().BoolVarP(&chatAnswer, "answer", "a", false, "compose an answer for every question")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil || historyService == nil {
		return errors.New("query service not configured")
	}

	id := chatConversation
	if id == "" {
		id = uuid.NewString()
	}
	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	if interactive {
		cmd.Printf("Conversation %s. Type /quit to leave.\n", id)
	}

	ask := queryService.Ask
	if chatAnswer {
		ask = queryService.Answer
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			outputTurns(cmd, id, historyService.History(id))
			continue
		case "/clear":
			historyService.Clear(id)
			cmd.Println("Conversation cleared.")
			continue
		}

		result, err := ask(cmd.Context(), id, line)
		if err != nil {
			if cmd.Context().Err() != nil {
				return nil
			}
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		outputResult(cmd, result)
		cmd.Println()
	}
	return scanner.Err()
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
