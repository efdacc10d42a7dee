package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest local files into a community",
	Long: `Ingests the files one after another, paced to stay under the embedding quota.
A file that fails is reported and the rest continue.

Examples:
  community-admin ingest --community-id 3 bylaws.pdf rules.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestCommunityID int64

func init() {
	ingestCmd.Flags().Int64Var(&ingestCommunityID, "community-id", 0, "Community the files belong to (required)")
	_ = ingestCmd.MarkFlagRequired("community-id")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	s, err := service()
	if err != nil {
		return err
	}

	files := make([]jobModel.IngestFile, 0, len(args))
	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		files = append(files, jobModel.IngestFile{Filename: filepath.Base(path), Path: path})
	}

	job := jobModel.Job{
		Id:      uuid.NewString(),
		JobType: jobModel.JobTypeIngest,
		JobPayload: jobModel.JobPayload{
			CommunityID: ingestCommunityID,
			Files:       files,
		},
	}
	job = s.IngestJob(cmd.Context(), job, func(j jobModel.Job) {
		cmd.Printf("Ingesting %s...\n", j.JobPayload.CurrentFile)
	})

	failed := 0
	for _, r := range job.JobPayload.Results {
		switch {
		case r.Error != "":
			failed++
			cmd.Printf("  FAILED  %s: %s\n", r.Filename, r.Error)
		case r.Result != nil:
			cmd.Printf("  OK      %s: %d/%d chunks", r.Filename, r.Result.InsertedCount, r.Result.ChunkCount)
			if skipped := len(r.Result.Errors); skipped > 0 {
				cmd.Printf(" (%d skipped)", skipped)
			}
			cmd.Println()
		}
	}
	cmd.Printf("Status: %s\n", job.Status)
	if failed == len(files) {
		return errors.New("no file was ingested")
	}
	return nil
}
