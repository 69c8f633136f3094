// Package cli provides bucket management commands.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/bucketops/bucketctl/internal/api"
	"github.com/bucketops/bucketctl/internal/events"
	"github.com/bucketops/bucketctl/internal/models"
	"github.com/bucketops/bucketctl/internal/table"
	"github.com/bucketops/bucketctl/internal/util/filter"
	"github.com/bucketops/bucketctl/internal/util/sanitize"
)

// newBucketsCmd creates the 'buckets' command group.
func newBucketsCmd() *cobra.Command {
	bucketsCmd := &cobra.Command{
		Use:   "buckets",
		Short: "Manage artifact buckets",
		Long: `Bucket management commands.

Commands:
  list    - List buckets with filtering and sorting
  create  - Create a bucket, optionally with a retention policy
  update  - Change a bucket's retention policy
  delete  - Delete a bucket and its files`,
	}

	bucketsCmd.AddCommand(newBucketsListCmd())
	bucketsCmd.AddCommand(newBucketsCreateCmd())
	bucketsCmd.AddCommand(newBucketsUpdateCmd())
	bucketsCmd.AddCommand(newBucketsDeleteCmd())

	return bucketsCmd
}

// newBucketsListCmd creates the 'buckets list' command.
func newBucketsListCmd() *cobra.Command {
	var (
		search   string
		tag      string
		sortBy   string
		descSort bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List buckets",
		Long: `List buckets with their sizes, storage tags and retention policies.

Filtering:
  --search matches bucket names case-insensitively as a substring.
  --tag keeps only buckets whose storage tag equals the given value;
  "all" (the default) keeps everything.

Sorting:
  --sort accepts "name" or "size". Size sorting compares the actual
  byte counts behind human-readable values, so 10K sorts below 1M.

Examples:
  # All buckets, largest first
  bucketctl buckets list --sort size --desc

  # Backup buckets on the offsite integration
  bucketctl buckets list --search backup --tag offsite-s3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			logger.Debug().Str("search", search).Str("tag", tag).Msg("Listing buckets")

			store, err := getStore()
			if err != nil {
				return err
			}

			rows, err := store.ListBuckets(GetContext())
			if err != nil {
				return fmt.Errorf("failed to list buckets: %w", err)
			}

			bus := events.NewBus(0)
			defer bus.Close()

			tbl := table.New[models.Bucket]("buckets", bus)
			tbl.SetRows(rows)
			tbl.SetCriteria(filter.Criteria{Name: search, Tag: tag})
			tbl.SortBy(sortBy, descSort)

			renderBuckets(tbl.Visible(), len(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name substring (case-insensitive)")
	cmd.Flags().StringVarP(&tag, "tag", "t", filter.TagAll, "Filter by storage tag (\"all\" = no filter)")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "Sort column: name or size")
	cmd.Flags().BoolVar(&descSort, "desc", false, "Sort in descending order")

	return cmd
}

// newBucketsCreateCmd creates the 'buckets create' command.
func newBucketsCreateCmd() *cobra.Command {
	var retention string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a bucket",
		Long: `Create a bucket, optionally with a retention policy.

Retention is given as "<value><measure>" where measure is one of
d (days), w (weeks), m (months), y (years). Files older than the policy
are expired by the storage backend.

Examples:
  bucketctl buckets create reports
  bucketctl buckets create nightly-builds --retention 2w`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := sanitize.BucketName(args[0])
			if name == "" {
				return errors.New("bucket name is empty")
			}

			var policy *models.RetentionPolicy
			if retention != "" {
				p, err := parseRetention(retention)
				if err != nil {
					return err
				}
				policy = &p
			}

			store, err := getStore()
			if err != nil {
				return err
			}

			if err := store.CreateBucket(GetContext(), name, policy); err != nil {
				if errors.Is(err, api.ErrRetentionLimitExceeded) {
					return fmt.Errorf("retention policy for %s exceeds the project limit: %w", name, err)
				}
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}

			if policy != nil {
				fmt.Printf("Created bucket %s (retention: %s)\n", name, policy)
			} else {
				fmt.Printf("Created bucket %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&retention, "retention", "r", "", "Retention policy, e.g. 30d, 2w, 6m, 1y")

	return cmd
}

// newBucketsUpdateCmd creates the 'buckets update' command.
func newBucketsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <name> <retention>",
		Short: "Change a bucket's retention policy",
		Long: `Change the retention policy of an existing bucket.

Examples:
  bucketctl buckets update nightly-builds 30d
  bucketctl buckets update reports 1y`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			policy, err := parseRetention(args[1])
			if err != nil {
				return err
			}

			store, err := getStore()
			if err != nil {
				return err
			}

			if err := store.UpdateBucket(GetContext(), name, policy); err != nil {
				if errors.Is(err, api.ErrRetentionLimitExceeded) {
					return fmt.Errorf("retention policy for %s exceeds the project limit: %w", name, err)
				}
				return fmt.Errorf("failed to update bucket %s: %w", name, err)
			}

			fmt.Printf("Updated bucket %s (retention: %s)\n", name, policy)
			return nil
		},
	}

	return cmd
}

// newBucketsDeleteCmd creates the 'buckets delete' command.
func newBucketsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a bucket and its files",
		Long: `Delete a bucket. All files in the bucket are deleted with it.

Asks for confirmation unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if !force {
				ok, err := promptConfirm(fmt.Sprintf("Delete bucket '%s' and all its files?", name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted")
					return nil
				}
			}

			store, err := getStore()
			if err != nil {
				return err
			}

			if err := store.DeleteBucket(GetContext(), name); err != nil {
				return fmt.Errorf("failed to delete bucket %s: %w", name, err)
			}

			fmt.Printf("Deleted bucket %s\n", name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")

	return cmd
}

// parseRetention parses "<value><measure>" retention shorthand, e.g. "30d",
// "2w", "6m", "1y". A bare number means days.
func parseRetention(s string) (models.RetentionPolicy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return models.RetentionPolicy{}, errors.New("retention is empty")
	}

	num := s
	measure := models.MeasureDays
	last := rune(s[len(s)-1])
	if !unicode.IsDigit(last) {
		num = s[:len(s)-1]
		switch last {
		case 'd':
			measure = models.MeasureDays
		case 'w':
			measure = models.MeasureWeeks
		case 'm':
			measure = models.MeasureMonths
		case 'y':
			measure = models.MeasureYears
		default:
			return models.RetentionPolicy{}, fmt.Errorf("unknown retention measure %q (use d, w, m or y)", string(last))
		}
	}

	value, err := strconv.Atoi(num)
	if err != nil || value < 0 {
		return models.RetentionPolicy{}, fmt.Errorf("invalid retention value %q", s)
	}

	return models.RetentionPolicy{ExpirationMeasure: measure, ExpirationValue: value}, nil
}
