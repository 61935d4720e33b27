package fs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spotify/snakebite/rpc/client"
	"github.com/spf13/cobra"
)

// ErrPredicateNotMet is returned by "fs test" when the predicates do not
// hold; Execute maps any error to exit code 1.
var ErrPredicateNotMet = errors.New("predicate not met")

var (
	lsCmd = &cobra.Command{
		Use:   "ls [paths...]",
		Short: "Lists files and directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recurse, _ := cmd.Flags().GetBool("recurse")
			entries, err := fsClient.Ls(cmd.Context(), recurse, args...)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Println(formatStatus(entry))
			}
			return nil
		},
	}
	mkdirCmd = &cobra.Command{
		Use:   "mkdir [paths...]",
		Short: "Creates directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			createParent, _ := cmd.Flags().GetBool("parents")
			modeStr, _ := cmd.Flags().GetString("mode")
			mode, err := parseMode(modeStr)
			if err != nil {
				return err
			}
			results, err := fsClient.Mkdir(cmd.Context(), createParent, mode, args...)
			if err != nil {
				return err
			}
			return checkResults("mkdir", results)
		},
	}
	rmCmd = &cobra.Command{
		Use:   "rm [paths...]",
		Short: "Removes files and directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recursive, _ := cmd.Flags().GetBool("recurse")
			results, err := fsClient.Remove(cmd.Context(), recursive, args...)
			if err != nil {
				return err
			}
			return checkResults("rm", results)
		},
	}
	rmdirCmd = &cobra.Command{
		Use:   "rmdir [paths...]",
		Short: "Removes empty directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := fsClient.Rmdir(cmd.Context(), args...)
			if err != nil {
				return err
			}
			return checkResults("rmdir", results)
		},
	}
	mvCmd = &cobra.Command{
		Use:   "mv [paths...] [destination]",
		Short: "Moves files and directories",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := args[len(args)-1]
			_, err := fsClient.Rename(cmd.Context(), dst, args[:len(args)-1]...)
			return err
		},
	}
	chmodCmd = &cobra.Command{
		Use:   "chmod [mode] [paths...]",
		Short: "Changes permission bits",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recurse, _ := cmd.Flags().GetBool("recurse")
			mode, err := parseMode(args[0])
			if err != nil {
				return err
			}
			_, err = fsClient.Chmod(cmd.Context(), mode, recurse, args[1:]...)
			return err
		},
	}
	chownCmd = &cobra.Command{
		Use:   "chown [owner][:group] [paths...]",
		Short: "Changes owner (and optionally group)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recurse, _ := cmd.Flags().GetBool("recurse")
			owner, group := args[0], ""
			if idx := strings.IndexByte(owner, ':'); idx >= 0 {
				owner, group = owner[:idx], owner[idx+1:]
			}
			_, err := fsClient.Chown(cmd.Context(), owner, group, recurse, args[1:]...)
			return err
		},
	}
	chgrpCmd = &cobra.Command{
		Use:   "chgrp [group] [paths...]",
		Short: "Changes group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recurse, _ := cmd.Flags().GetBool("recurse")
			_, err := fsClient.Chown(cmd.Context(), "", args[0], recurse, args[1:]...)
			return err
		},
	}
	setrepCmd = &cobra.Command{
		Use:   "setrep [replication] [paths...]",
		Short: "Sets the replication factor of files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recurse, _ := cmd.Flags().GetBool("recurse")
			replication, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("replication must be a number: %w", err)
			}
			results, err := fsClient.SetReplication(cmd.Context(), uint32(replication), recurse, args[1:]...)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Result {
					fmt.Printf("Replication %d set: %s\n", replication, r.Path)
				}
			}
			return nil
		},
	}
	statCmd = &cobra.Command{
		Use:   "stat [path]",
		Short: "Prints the status of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := fsClient.Stat(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printStat(status)
			return nil
		},
	}
	dfCmd = &cobra.Command{
		Use:   "df",
		Short: "Prints filesystem capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := fsClient.Df(cmd.Context())
			if err != nil {
				return err
			}
			printDf(info)
			return nil
		},
	}
	duCmd = &cobra.Command{
		Use:   "du [paths...]",
		Short: "Prints space consumed below the given paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summarize, _ := cmd.Flags().GetBool("summarize")
			usage, err := fsClient.Du(cmd.Context(), summarize, args...)
			if err != nil {
				return err
			}
			for _, u := range usage {
				fmt.Printf("%-12d %s\n", u.Length, u.Path)
			}
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count [paths...]",
		Short: "Prints directory, file and byte counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := fsClient.Count(cmd.Context(), args...)
			if err != nil {
				return err
			}
			for _, s := range summaries {
				fmt.Printf("%12d %12d %15d %s\n",
					s.Summary.DirectoryCount, s.Summary.FileCount, s.Summary.Length, s.Path)
			}
			return nil
		},
	}
	serverDefaultsCmd = &cobra.Command{
		Use:   "serverdefaults",
		Short: "Prints the server defaults for new files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := fsClient.ServerDefaults(cmd.Context())
			if err != nil {
				return err
			}
			printServerDefaults(defaults)
			return nil
		},
	}
	testCmd = &cobra.Command{
		Use:   "test [path]",
		Short: "Tests predicates against a path, exiting non-zero on failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exists, _ := cmd.Flags().GetBool("exists")
			directory, _ := cmd.Flags().GetBool("directory")
			zero, _ := cmd.Flags().GetBool("zero-length")
			ok, err := fsClient.Test(cmd.Context(), args[0], exists, directory, zero)
			if err != nil {
				return err
			}
			if !ok {
				// Exit status is the whole answer; no usage or error text.
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return ErrPredicateNotMet
			}
			return nil
		},
	}
	touchzCmd = &cobra.Command{
		Use:   "touchz [paths...]",
		Short: "Creates zero-length files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			replication, _ := cmd.Flags().GetUint32("replication")
			blockSize, _ := cmd.Flags().GetUint64("blocksize")
			results, err := fsClient.Touchz(cmd.Context(), replication, blockSize, args...)
			if err != nil {
				return err
			}
			return checkResults("touchz", results)
		},
	}
)

func init() {
	// Add per-command flags
	lsCmd.Flags().BoolP("recurse", "R", false, "list subdirectories recursively")
	mkdirCmd.Flags().BoolP("parents", "p", false, "create parent directories as needed")
	mkdirCmd.Flags().StringP("mode", "m", "755", "octal permission bits for the new directories")
	rmCmd.Flags().BoolP("recurse", "R", false, "remove directories and their contents")
	chmodCmd.Flags().BoolP("recurse", "R", false, "apply recursively")
	chownCmd.Flags().BoolP("recurse", "R", false, "apply recursively")
	chgrpCmd.Flags().BoolP("recurse", "R", false, "apply recursively")
	setrepCmd.Flags().BoolP("recurse", "R", false, "apply recursively")
	duCmd.Flags().BoolP("summarize", "s", false, "report only the total for each path")
	testCmd.Flags().BoolP("exists", "e", false, "the path exists")
	testCmd.Flags().BoolP("directory", "d", false, "the path is a directory")
	testCmd.Flags().BoolP("zero-length", "z", false, "the file is zero length")
	touchzCmd.Flags().Uint32("replication", 0, "replication factor (0 uses the server default)")
	touchzCmd.Flags().Uint64("blocksize", 0, "block size in bytes (0 uses the server default)")
}

// parseMode reads octal permission bits like 755 or 0644
func parseMode(s string) (uint32, error) {
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return uint32(mode), nil
}

// checkResults turns a false per-path result into an error
func checkResults(op string, results []client.PathResult) error {
	for _, r := range results {
		if !r.Result {
			return fmt.Errorf("%s: `%s': operation failed", op, r.Path)
		}
	}
	return nil
}
