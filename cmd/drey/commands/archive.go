package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/drey/internal/archive"
	"github.com/dyluth/drey/internal/printer"
	"github.com/dyluth/drey/pkg/kanban"
)

var (
	archiveOutputFormat string
	archiveSince        string
	archiveUntil        string
	archiveAssignee     string
	archiveLabel        string
)

var archiveCmd = &cobra.Command{
	Use:   "archive BOARD [TASK_ID]",
	Short: "Inspect archived tasks with filtering",
	Long: `Inspect tasks archived from a board's Done column in list or get mode.

List Mode (no TASK_ID):
  Displays archived tasks matching filters as a table or JSONL stream.

Get Mode (with TASK_ID):
  Displays complete details of a single archived task as pretty-printed JSON.

Output Formats (list mode only):
  default - Human-readable table with ID, priority, assignee and title
  jsonl   - Line-delimited JSON, one task per line

Time Filters (list mode only):
  --since  - Show tasks created after this time
  --until  - Show tasks created before this time

Content Filters (list mode only):
  --assignee - Filter by assignee (exact match: human, ai, unassigned)
  --label    - Filter by label (glob pattern: "infra-*")

Examples:
  # List everything cleared from sprint-12
  drey archive sprint-12

  # Archived tasks from the last two hours, as JSONL for jq
  drey archive sprint-12 --output=jsonl --since=2h | jq .title

  # A single archived task
  drey archive sprint-12 7e9a1c2b-...`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().StringVarP(&archiveOutputFormat, "output", "o", "default", "Output format: default or jsonl (ignored in get mode)")

	// Time-based filters
	archiveCmd.Flags().StringVar(&archiveSince, "since", "", "Show tasks after time (duration or RFC3339)")
	archiveCmd.Flags().StringVar(&archiveUntil, "until", "", "Show tasks before time (duration or RFC3339)")

	// Content-based filters
	archiveCmd.Flags().StringVar(&archiveAssignee, "assignee", "", "Filter by assignee (exact match)")
	archiveCmd.Flags().StringVar(&archiveLabel, "label", "", "Filter by label (glob pattern)")

	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	boardName := args[0]
	isGetMode := len(args) > 1

	var outputFormat archive.OutputFormat
	if !isGetMode {
		switch archiveOutputFormat {
		case "default":
			outputFormat = archive.OutputFormatDefault
		case "jsonl":
			outputFormat = archive.OutputFormatJSONL
		default:
			return printer.Error(
				"invalid output format",
				fmt.Sprintf("Unknown format: %s", archiveOutputFormat),
				[]string{"Valid formats: default, jsonl"},
			)
		}
	}

	client, _, err := loadClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if isGetMode {
		if err := archive.GetArchived(ctx, client, boardName, args[1], os.Stdout); err != nil {
			if archive.IsNotFound(err) {
				return printer.Error(
					"archived task not found",
					err.Error(),
					[]string{"List the archive with: drey archive " + boardName},
				)
			}
			return err
		}
		return nil
	}

	sinceMS, untilMS, err := archive.ParseTimeRange(archiveSince, archiveUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration like '2h' or an RFC3339 timestamp"},
		)
	}

	filters := &archive.FilterCriteria{
		SinceTimestampMs: sinceMS,
		UntilTimestampMs: untilMS,
		Assignee:         kanban.Assignee(archiveAssignee),
		LabelGlob:        archiveLabel,
	}

	return archive.ListArchived(ctx, client, boardName, outputFormat, filters, os.Stdout)
}
