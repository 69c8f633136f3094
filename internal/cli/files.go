// Package cli provides file management commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/constants"
	"github.com/bucketops/bucketctl/internal/events"
	"github.com/bucketops/bucketctl/internal/models"
	"github.com/bucketops/bucketctl/internal/notify"
	"github.com/bucketops/bucketctl/internal/table"
	"github.com/bucketops/bucketctl/internal/transfer"
	"github.com/bucketops/bucketctl/internal/util/filter"
	"github.com/bucketops/bucketctl/internal/util/sanitize"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Manage files in a bucket",
		Long: `File management commands.

Commands:
  list      - List files in a bucket with filtering and sorting
  upload    - Upload local files to a bucket
  download  - Download files from a bucket
  delete    - Delete files from a bucket`,
	}

	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesDownloadCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())

	return filesCmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var (
		search   string
		tag      string
		sortBy   string
		descSort bool
	)

	cmd := &cobra.Command{
		Use:   "list <bucket>",
		Short: "List files in a bucket",
		Long: `List the files of a bucket with sizes and modification times.

Filtering and sorting work the same way as 'buckets list': --search is a
case-insensitive name substring, --tag matches the storage tag exactly
("all" disables it), and --sort accepts "name" or "size".

Examples:
  bucketctl files list reports
  bucketctl files list reports --search 2023 --sort size --desc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]

			store, err := getStore()
			if err != nil {
				return err
			}

			resp, err := store.ListFiles(GetContext(), bucket)
			if err != nil {
				return fmt.Errorf("failed to list files in %s: %w", bucket, err)
			}

			bus := events.NewBus(0)
			defer bus.Close()

			tbl := table.New[models.FileRow]("files", bus)
			tbl.SetRows(resp.Rows)
			tbl.SetCriteria(filter.Criteria{Name: search, Tag: tag})
			tbl.SortBy(sortBy, descSort)

			renderFiles(bucket, tbl.Visible(), len(resp.Rows), resp.RetentionPolicy)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by name substring (case-insensitive)")
	cmd.Flags().StringVarP(&tag, "tag", "t", filter.TagAll, "Filter by storage tag (\"all\" = no filter)")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "Sort column: name or size")
	cmd.Flags().BoolVar(&descSort, "desc", false, "Sort in descending order")

	return cmd
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "upload <bucket> <file>...",
		Short: "Upload files to a bucket",
		Long: `Upload one or more local files to a bucket. The bucket is created
if it does not exist yet.

Multiple files upload concurrently, bounded by --max-concurrent. One
failing upload does not stop the others; the command reports every
failure at the end.

Examples:
  bucketctl files upload reports summary.pdf
  bucketctl files upload builds *.tar.gz --max-concurrent 3`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			paths := args[1:]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			store, err := newStore(cfg, selectedIntegration(cfg))
			if err != nil {
				return err
			}

			tasks := make([]transfer.Task, 0, len(paths))
			for _, path := range paths {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("cannot upload %s: %w", path, err)
				}
				if info.IsDir() {
					return fmt.Errorf("cannot upload %s: is a directory", path)
				}
				tasks = append(tasks, transfer.Task{
					Type:   "upload",
					Bucket: bucket,
					Name:   path,
					Size:   info.Size(),
				})
			}

			bus := events.NewBus(0)
			notifierDone := watchTransfers(cfg, bus)

			runner := transfer.NewRunner(maxConcurrent, bus, GetLogger())
			err = runner.Run(GetContext(), tasks, func(ctx context.Context, task transfer.Task) error {
				f, size, err := transfer.OpenWithSize(task.Name)
				if err != nil {
					return err
				}
				defer f.Close()

				name := sanitize.ObjectKey(filepath.Base(task.Name))
				// Seekable wrapper: the S3 transport rewinds the body to
				// compute the payload checksum.
				r := transfer.ProgressReadSeeker(f, size, "uploading "+name)
				return store.Upload(ctx, task.Bucket, name, r, size)
			})
			bus.Close()
			<-notifierDone
			if err != nil {
				return fmt.Errorf("upload finished with errors: %w", err)
			}

			fmt.Printf("Uploaded %d file(s) to %s\n", len(tasks), bucket)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", constants.DefaultMaxConcurrent, "Maximum concurrent transfers (1-10)")

	return cmd
}

// newFilesDownloadCmd creates the 'files download' command.
func newFilesDownloadCmd() *cobra.Command {
	var (
		outDir        string
		maxConcurrent int
		force         bool
	)

	cmd := &cobra.Command{
		Use:   "download <bucket> <file>...",
		Short: "Download files from a bucket",
		Long: `Download one or more files from a bucket into --outdir (default:
current directory).

Existing local files are only overwritten after confirmation, or
unconditionally with --force.

Examples:
  bucketctl files download reports summary.pdf
  bucketctl files download builds app.tar.gz app.sig --outdir /tmp`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			names := args[1:]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			store, err := newStore(cfg, selectedIntegration(cfg))
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory %s: %w", outDir, err)
			}

			// Overwrite checks happen up front so prompts never interleave
			// with concurrent progress bars.
			if !force {
				for _, name := range names {
					dest := filepath.Join(outDir, filepath.Base(name))
					if _, err := os.Stat(dest); err == nil {
						ok, err := promptConfirm(fmt.Sprintf("Overwrite existing file '%s'?", dest))
						if err != nil {
							return err
						}
						if !ok {
							fmt.Println("Aborted")
							return nil
						}
					}
				}
			}

			tasks := make([]transfer.Task, 0, len(names))
			for _, name := range names {
				tasks = append(tasks, transfer.Task{
					Type:   "download",
					Bucket: bucket,
					Name:   name,
					Size:   -1,
				})
			}

			bus := events.NewBus(0)
			notifierDone := watchTransfers(cfg, bus)

			runner := transfer.NewRunner(maxConcurrent, bus, GetLogger())
			err = runner.Run(GetContext(), tasks, func(ctx context.Context, task transfer.Task) error {
				dest := filepath.Join(outDir, filepath.Base(task.Name))
				f, err := os.Create(dest)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", dest, err)
				}
				defer f.Close()

				w := transfer.ProgressWriter(f, task.Size, "downloading "+task.Name)
				if _, err := store.Download(ctx, task.Bucket, task.Name, w); err != nil {
					os.Remove(dest)
					return err
				}
				return nil
			})
			bus.Close()
			<-notifierDone
			if err != nil {
				return fmt.Errorf("download finished with errors: %w", err)
			}

			fmt.Printf("Downloaded %d file(s) to %s\n", len(tasks), outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "outdir", "o", ".", "Output directory")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", constants.DefaultMaxConcurrent, "Maximum concurrent transfers (1-10)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files without confirmation")

	return cmd
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <bucket> <file>...",
		Short: "Delete files from a bucket",
		Long: `Delete one or more files from a bucket.

Asks for confirmation unless --force is given.

Examples:
  bucketctl files delete reports old-summary.pdf
  bucketctl files delete builds app-v1.tar.gz app-v2.tar.gz --force`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			names := args[1:]

			if !force {
				ok, err := promptConfirm(fmt.Sprintf("Delete %d file(s) from bucket '%s'?", len(names), bucket))
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

			if err := store.DeleteFiles(GetContext(), bucket, names...); err != nil {
				return fmt.Errorf("failed to delete files from %s: %w", bucket, err)
			}

			fmt.Printf("Deleted %d file(s) from %s\n", len(names), bucket)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")

	return cmd
}

// watchTransfers raises desktop notifications for transfer outcomes when
// enabled in the configuration. The returned channel closes once the bus
// closes and every pending event has been consumed; callers must wait on
// it before returning, or the final notification races process exit.
func watchTransfers(cfg *config.Config, bus *events.Bus) <-chan struct{} {
	// Subscribe before returning so events published right after cannot
	// slip past the notifier.
	ch := bus.SubscribeAll()
	done := make(chan struct{})
	go func() {
		defer close(done)
		notifier := notify.NewNotifier(cfg.Notifications, GetLogger())
		notifier.Consume(ch)
	}()
	return done
}
