package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"imageingest/internal/imageproc"
	"imageingest/internal/storage"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newProcessCmd() *cobra.Command {
	var uploader string
	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Run a local image through the pipeline into staging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			upload, err := imageproc.FromLocalFile(args[0])
			if err != nil {
				return err
			}
			res, err := a.svc.ProcessUpload(cmd.Context(), upload, uploader)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().StringVarP(&uploader, "uploader", "u", "", "Uploader id owning the staging directory")
	cmd.MarkFlagRequired("uploader")
	return cmd
}

func newPromoteCmd() *cobra.Command {
	var subject int64
	cmd := &cobra.Command{
		Use:   "promote <staged-path>",
		Short: "Move a staged asset group into production",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.svc.Promote(cmd.Context(), args[0], subject)
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
	cmd.Flags().Int64VarP(&subject, "subject", "s", 0, "Subject id whose canonical path receives the asset")
	cmd.MarkFlagRequired("subject")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete an asset group from staging or production",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			return printJSON(a.svc.Delete(cmd.Context(), args[0]))
		},
	}
}

func newSubjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subject",
		Short: "Manage the person directory",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <name> <canonical-path>",
		Short: "Create or update a person's canonical path",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid subject id %q", args[0])
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("database.url is not configured")
			}
			db, err := storage.NewStorage(cmd.Context(), cfg.Database.URL, cfg.Database.MigrationsPath)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.SaveSubject(cmd.Context(), id, args[1], args[2])
		},
	})
	return cmd
}
