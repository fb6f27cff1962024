package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loupelabs/loupe/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export matching log records as CSV or JSONL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := resolveRepo()
		if repo == "" {
			return fmt.Errorf("no repository selected; pass --repo or run 'loupe repos use <id>'")
		}

		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		printURL, _ := cmd.Flags().GetBool("url")
		bucket, _ := cmd.Flags().GetString("s3-bucket")

		var columns []string
		if v, _ := cmd.Flags().GetString("columns"); v != "" {
			columns = strings.Split(v, ",")
		}

		params, err := searchParamsFromFlags(cmd, "")
		if err != nil {
			return err
		}

		if printURL {
			fmt.Println(api.ExportURL(repo, format, params, columns))
			return nil
		}

		// Pick the destination: an S3 buffer, a file, or stdout.
		var dst io.Writer = os.Stdout
		var buf *bytes.Buffer
		switch {
		case bucket != "":
			buf = &bytes.Buffer{}
			dst = buf
		case out != "" && out != "-":
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			dst = f
		}

		ew, err := export.NewWriter(dst, format, columns)
		if err != nil {
			return err
		}

		written := 0
		cursor := ""
		for {
			page, err := api.ListLogs(cmd.Context(), repo, params, cursor, 0)
			if err != nil {
				return err
			}
			for _, rec := range page.Items {
				if err := ew.WriteRecord(rec); err != nil {
					return err
				}
			}
			written += len(page.Items)
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}
		if err := ew.Flush(); err != nil {
			return err
		}

		if bucket != "" {
			region, _ := cmd.Flags().GetString("s3-region")
			endpoint, _ := cmd.Flags().GetString("s3-endpoint")
			key, _ := cmd.Flags().GetString("s3-key")
			if key == "" {
				key = fmt.Sprintf("loupe-export-%s-%s.%s", repo, time.Now().UTC().Format("20060102T150405Z"), format)
			}

			dest, err := export.NewS3Destination(cmd.Context(), bucket, region, endpoint)
			if err != nil {
				return err
			}
			if err := dest.Upload(cmd.Context(), key, format, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%d records uploaded to s3://%s/%s\n", written, bucket, key)
			return nil
		}

		if out != "" && out != "-" {
			fmt.Fprintf(os.Stderr, "%d records written to %s\n", written, out)
		}
		return nil
	},
}

func init() {
	addSearchFlags(exportCmd)
	exportCmd.Flags().String("format", export.FormatCSV, "export format (csv or jsonl)")
	exportCmd.Flags().String("columns", "", "comma-separated column selection")
	exportCmd.Flags().StringP("out", "o", "", "output file ('-' or empty for stdout)")
	exportCmd.Flags().Bool("url", false, "print the server export URL instead of downloading")
	exportCmd.Flags().String("s3-bucket", "", "upload to this S3 bucket instead of writing locally")
	exportCmd.Flags().String("s3-key", "", "S3 object key (defaults to a timestamped name)")
	exportCmd.Flags().String("s3-region", "us-east-1", "S3 region")
	exportCmd.Flags().String("s3-endpoint", "", "custom S3 endpoint (MinIO and similar)")
}
