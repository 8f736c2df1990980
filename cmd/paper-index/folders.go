// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyoung-yu/paper-site/internal/catalog"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Rename paper folders to path-safe slugs",
	Long: `Folders renames every directory under the papers directory to its slug
("Skin & Hair Care" becomes "Skin_and_Hair_Care") and rewrites the folder
slugs in the catalog to match. A directory whose slug is already taken is
left alone and reported as a conflict.`,
	RunE: runFolders,
}

func runFolders(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return err
	}
	sum, err := catalog.NormalizeFolders(cfg.Paths.PapersDir, cat, os.Stdout)
	if err != nil {
		return err
	}
	if err := catalog.Save(cfg.Paths.Catalog, cat); err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d folder(s) could not be renamed", sum.Conflicts)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(foldersCmd)
}
