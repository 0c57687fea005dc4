package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"iron-coder/internal/bootstrap"
	"iron-coder/internal/storage"
)

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload a snapshot of the credential store to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := bootstrap.BuildStorage(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}

			location, err := svc.UploadFile(cmd.Context(), a.cfg.Store.Path, storage.UploadOptions{
				Bucket:    a.cfg.Backup.Bucket,
				KeyPrefix: a.cfg.Backup.KeyPrefix,
				ProgressCallback: func(done, total int64) {
					a.logger.Debugf("uploaded %d/%d bytes", done, total)
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}
}

func newBackupsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List uploaded snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := bootstrap.BuildStorage(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}

			objects, err := svc.ListObjects(cmd.Context(), a.cfg.Backup.Bucket, a.cfg.Backup.KeyPrefix)
			if err != nil {
				return err
			}
			for _, obj := range objects {
				modified := "-"
				if obj.LastModified != nil {
					modified = obj.LastModified.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", obj.Key, obj.Size, modified)
			}
			return nil
		},
	}
}
