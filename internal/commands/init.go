package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bote/internal/config"
	"github.com/cleared-dev/bote/internal/gitops"
	"github.com/cleared-dev/bote/internal/store/filestore"
)

func newInitCommand() *cobra.Command {
	var name string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bote project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, name, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "group name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(out io.Writer, dir, name string, withGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := filestore.New(dir).Init(); err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}

	// Raw statements stay out of history; only reconciled ones are kept.
	gitignore := "import/*.csv\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	for _, keep := range []string{filepath.Join("import", ".gitkeep"), filepath.Join("import", "processed", ".gitkeep"), filepath.Join("logs", ".gitkeep")} {
		if err := os.WriteFile(filepath.Join(dir, keep), []byte{}, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", keep, err)
		}
	}

	if !withGit {
		fmt.Fprintf(out, "Initialized bote project at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir, out); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: "+name, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized bote project at %s (%s)\n", dir, hash)
	return nil
}
