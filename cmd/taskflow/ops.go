package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/config"
	"taskflow/internal/ops"
)

// fileBackend reports whether the configured backend keeps its data under
// data_dir, which is all backup and restore can see.
func (c *cli) fileBackend() error {
	switch c.cfg.Storage.Backend {
	case config.BackendFile, config.BackendSQLite:
		return nil
	default:
		return fmt.Errorf("backup needs a file or sqlite backend, not %q", c.cfg.Storage.Backend)
	}
}

func (c *cli) backupCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory as .tar.gz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.fileBackend(); err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join("backups", ops.ArchiveName("taskflow", time.Now()))
			}
			sum, err := ops.Backup(c.cfg.Storage.DataDir, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d files, %d bytes)\n", sum.Archive, sum.Files, sum.Bytes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output archive path (default backups/taskflow-<ts>.tar.gz)")
	return cmd
}

func (c *cli) restoreCmd() *cobra.Command {
	var archive, target string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Unpack a backup archive",
		Long:  `Unpack a backup into --target-dir. Point --data-dir at it to use the restored tasks.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive == "" {
				return fmt.Errorf("--archive is required")
			}
			sum, err := ops.Restore(archive, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d files into %s\n", sum.Files, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "Backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "Restore target directory")
	return cmd
}

func (c *cli) drillCmd() *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Rehearse backup and restore, then compare digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.fileBackend(); err != nil {
				return err
			}
			rep, err := ops.Drill(c.cfg.Storage.DataDir, workDir, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "backup:", rep.Archive)
			fmt.Fprintln(out, "restored:", rep.RestoreDir)
			fmt.Fprintln(out, "digest:", rep.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "Workspace for drill artifacts")
	return cmd
}
