package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage indexed documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [filename]",
	Short: "Delete every chunk of a document",
	Long:  `Deletes the document's chunks. Without --community-id the filename is removed from every community.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsCommunityID int64

func init() {
	documentsListCmd.Flags().Int64Var(&documentsCommunityID, "community-id", 0, "Only this community")
	documentsDeleteCmd.Flags().Int64Var(&documentsCommunityID, "community-id", 0, "Only in this community")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	docs, err := s.ListDocuments(cmd.Context(), documentsCommunityID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMMUNITY\tFILENAME\tCHUNKS\tINGESTED")
	for _, d := range docs {
		community := d.CommunityName
		if community == "" {
			community = fmt.Sprint(d.CommunityID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", community, d.Filename, d.ChunkCount, d.EarliestCreatedAt.Format("2006-01-02 15:04"))
	}
	if err = tw.Flush(); err != nil {
		return err
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	filter := commonModels.DocumentFilter{CommunityID: documentsCommunityID, Filename: args[0]}
	if err = s.DeleteDocument(cmd.Context(), filter); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
