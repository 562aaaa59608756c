package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage repositories inside a project graph",
	Long: `When several repositories are ingested into one project under distinct
path prefixes, these commands link them and remove them individually.`,
}

var reposLinkLabel string

var reposLinkCmd = &cobra.Command{
	Use:   "link <source-prefix> <target-prefix>",
	Short: "Record a cross-repository dependency",
	Long: `Link two ingested repositories with a labeled dependency edge. Each
prefix must match at least one ingested file path.

Examples:
  ripple repos link frontend/ backend/
  ripple repos link frontend/ backend/ --label "REST calls"`,
	Args: cobra.ExactArgs(2),
	Run:  runReposLink,
}

var reposRemoveCmd = &cobra.Command{
	Use:   "remove <prefix>",
	Short: "Delete one repository's nodes and edges",
	Long: `Delete every node whose path starts with the given prefix, along with
all edges touching them. Other repositories in the project are untouched.

Example:
  ripple repos remove frontend/`,
	Args: cobra.ExactArgs(1),
	Run:  runReposRemove,
}

func init() {
	reposLinkCmd.Flags().StringVar(&reposLinkLabel, "label", "depends on",
		"Human-readable label for the link")
	reposCmd.AddCommand(reposLinkCmd)
	reposCmd.AddCommand(reposRemoveCmd)
	rootCmd.AddCommand(reposCmd)
}

func runReposLink(cmd *cobra.Command, args []string) {
	store, cfg, _ := mustGetStore()
	project := resolveProject(cfg)

	if err := store.LinkRepos(project, args[0], args[1], reposLinkLabel); err != nil {
		fmt.Fprintf(os.Stderr, "Error linking repositories: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Linked %q -> %q in project %q\n", args[0], args[1], project)
}

func runReposRemove(cmd *cobra.Command, args []string) {
	store, cfg, _ := mustGetStore()
	project := resolveProject(cfg)

	if err := store.DeleteRepo(project, args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing repository: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed repository %q from project %q\n", args[0], project)
}
