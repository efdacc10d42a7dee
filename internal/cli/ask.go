package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Run one chat turn",
	Long: `Sends a message through the same pipeline as POST /chat and prints the reply.

The history file is a JSON array of {"role": "user"|"assistant", "text": "..."} turns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askCommunity   string
	askHistoryFile string
	askVerbose     bool
)

func init() {
	askCmd.Flags().StringVarP(&askCommunity, "community", "c", "", "Community name, skips the follow-up questions")
	askCmd.Flags().StringVar(&askHistoryFile, "history-file", "", "JSON file with earlier turns")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "Print the dialogue state as well")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	history, err := readHistory(askHistoryFile)
	if err != nil {
		return err
	}

	resp, err := s.Answer(cmd.Context(), rag.ChatRequest{
		Message:   strings.Join(args, " "),
		History:   history,
		Community: askCommunity,
	})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if askVerbose {
		cmd.Printf("[state=%s community=%q role=%q]\n", resp.State, resp.Community, resp.Role)
	}
	cmd.Println(resp.Reply)
	return nil
}

func readHistory(path string) ([]commonModels.Turn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	var turns []commonModels.Turn
	if err = json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parsing history file: %w", err)
	}
	return turns, nil
}
