package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/spf13/cobra"
)

var communitiesCmd = &cobra.Command{
	Use:   "communities",
	Short: "Manage communities",
	Long:  `List, create, rename or delete the communities documents are partitioned by.`,
}

var communitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every community",
	Args:  cobra.NoArgs,
	RunE:  runCommunitiesList,
}

var communitiesCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a community",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommunitiesCreate,
}

var communitiesRenameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a community, keeping its id and slug",
	Args:  cobra.ExactArgs(2),
	RunE:  runCommunitiesRename,
}

var communitiesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a community and all of its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommunitiesDelete,
}

var newCommunity communityModel.NewCommunity

func init() {
	communitiesCreateCmd.Flags().StringVar(&newCommunity.City, "city", "", "City the community is in")
	communitiesCreateCmd.Flags().StringVar(&newCommunity.PortalURL, "portal-url", "", "Resident portal link")
	communitiesCreateCmd.Flags().StringVar(&newCommunity.Description, "description", "", "Short description")

	communitiesCmd.AddCommand(communitiesListCmd)
	communitiesCmd.AddCommand(communitiesCreateCmd)
	communitiesCmd.AddCommand(communitiesRenameCmd)
	communitiesCmd.AddCommand(communitiesDeleteCmd)
	rootCmd.AddCommand(communitiesCmd)
}

func runCommunitiesList(cmd *cobra.Command, _ []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	all, err := s.ListCommunities(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list communities: %w", err)
	}
	if len(all) == 0 {
		cmd.Println("No communities yet.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSLUG\tACTIVE")
	for _, c := range all {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", c.ID, c.Name, c.Slug, c.IsActive)
	}
	return tw.Flush()
}

func runCommunitiesCreate(cmd *cobra.Command, args []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	req := newCommunity
	req.Name = args[0]
	created, err := s.CreateCommunity(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create community: %w", err)
	}
	cmd.Printf("Created community %d: %s (%s)\n", created.ID, created.Name, created.Slug)
	return nil
}

func runCommunitiesRename(cmd *cobra.Command, args []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	renamed, err := s.RenameCommunity(cmd.Context(), id, args[1])
	if err != nil {
		return fmt.Errorf("failed to rename community: %w", err)
	}
	cmd.Printf("Community %d is now %s\n", renamed.ID, renamed.Name)
	return nil
}

func runCommunitiesDelete(cmd *cobra.Command, args []string) error {
	s, err := service()
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err = s.DeleteCommunity(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete community: %w", err)
	}
	cmd.Printf("Deleted community %d\n", id)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid community id %q", raw)
	}
	return id, nil
}
