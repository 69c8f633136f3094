package cli

import (
	"fmt"
	"strings"

	"github.com/bucketops/bucketctl/internal/models"
	bcstrings "github.com/bucketops/bucketctl/internal/util/strings"
)

// renderBuckets prints bucket rows as a table. Rows come from the table
// state already filtered and sorted.
func renderBuckets(rows []models.Bucket, total int) {
	if len(rows) == 0 {
		fmt.Println("No buckets found")
		return
	}

	if len(rows) < total {
		fmt.Printf("Filtered: %d of %d %s match\n", len(rows), total, bcstrings.Pluralize("bucket", int64(total)))
	}
	fmt.Printf("Found %d %s:\n\n", len(rows), bcstrings.Pluralize("bucket", int64(len(rows))))
	fmt.Printf("%-40s %-12s %-12s %s\n", "NAME", "SIZE", "STORAGE", "RETENTION")
	fmt.Println(strings.Repeat("-", 90))

	for _, b := range rows {
		retention := "-"
		if b.RetentionPolicy != nil {
			retention = b.RetentionPolicy.String()
		}
		fmt.Printf("%-40s %-12s %-12s %s\n", b.Name, b.Size, b.Tags.Type, retention)
	}
}

// renderFiles prints file rows as a table, with the bucket's retention
// policy in the header when one is set.
func renderFiles(bucket string, rows []models.FileRow, total int, policy *models.RetentionPolicy) {
	if policy != nil {
		fmt.Printf("Bucket %s (retention: %s)\n", bucket, policy)
	} else {
		fmt.Printf("Bucket %s\n", bucket)
	}

	if len(rows) == 0 {
		fmt.Println("No files found")
		return
	}

	if len(rows) < total {
		fmt.Printf("Filtered: %d of %d %s match\n", len(rows), total, bcstrings.Pluralize("file", int64(total)))
	}
	fmt.Printf("Found %d %s:\n\n", len(rows), bcstrings.Pluralize("file", int64(len(rows))))
	fmt.Printf("%-50s %-12s %s\n", "NAME", "SIZE", "MODIFIED")
	fmt.Println(strings.Repeat("-", 90))

	for _, f := range rows {
		fmt.Printf("%-50s %-12s %s\n", f.Name, f.Size, f.ModifiedTime)
	}
}
