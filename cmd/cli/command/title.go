package command

import (
	"fmt"
	"strconv"
	"strings"

	"reviewhub/cmd/cli/command/client"
	"reviewhub/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Browse and manage titles",
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f client.TitleFilter
		f.Genre, _ = cmd.Flags().GetString("genre")
		f.Category, _ = cmd.Flags().GetString("category")
		f.Name, _ = cmd.Flags().GetString("name")
		f.Year, _ = cmd.Flags().GetInt("year")

		result, err := newClient().ListTitles(f, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		fmt.Printf("Titles (page %d of %d, %d total):\n", result.Page, result.TotalPages, result.Total)
		for _, t := range result.Data {
			fmt.Printf("  [%d] %s (%d)  %s\n", t.ID, t.Name, t.Year, formatRating(t.Rating))
		}
		return nil
	},
}

var showTitleCmd = &cobra.Command{
	Use:   "show [title-id]",
	Short: "Show one title with its rating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		t, err := newClient().GetTitle(id)
		if err != nil {
			return fmt.Errorf("failed to get title: %w", err)
		}

		color.New(color.Bold).Printf("%s (%d)\n", t.Name, t.Year)
		fmt.Printf("Rating:   %s\n", formatRating(t.Rating))
		if t.Category != nil {
			fmt.Printf("Category: %s\n", t.Category.Name)
		}
		if len(t.Genre) > 0 {
			names := make([]string, 0, len(t.Genre))
			for _, g := range t.Genre {
				names = append(names, g.Name)
			}
			fmt.Printf("Genres:   %s\n", strings.Join(names, ", "))
		}
		if t.Description != "" {
			fmt.Printf("\n%s\n", t.Description)
		}
		return nil
	},
}

var createTitleCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a title (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.CreateTitleRequest
		req.Name, _ = cmd.Flags().GetString("name")
		req.Year, _ = cmd.Flags().GetInt("year")
		req.Description, _ = cmd.Flags().GetString("description")
		req.Genre, _ = cmd.Flags().GetStringSlice("genre")
		if category, _ := cmd.Flags().GetString("category"); category != "" {
			req.Category = &category
		}

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		t, err := c.CreateTitle(req)
		if err != nil {
			return fmt.Errorf("failed to create title: %w", err)
		}
		success("Created title %d: %s (%d)", t.ID, t.Name, t.Year)
		return nil
	},
}

var deleteTitleCmd = &cobra.Command{
	Use:   "delete [title-id]",
	Short: "Delete a title and all its reviews (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		if err := c.DeleteTitle(id); err != nil {
			return fmt.Errorf("failed to delete title: %w", err)
		}
		success("Deleted title %d", id)
		return nil
	},
}

func formatRating(r *float64) string {
	if r == nil {
		return "no ratings yet"
	}
	return fmt.Sprintf("★ %.1f/10", *r)
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s ID %q", what, raw)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(titleCmd)
	titleCmd.AddCommand(listTitlesCmd, showTitleCmd, createTitleCmd, deleteTitleCmd)

	addPageFlags(listTitlesCmd)
	listTitlesCmd.Flags().String("genre", "", "genre slug")
	listTitlesCmd.Flags().String("category", "", "category slug")
	listTitlesCmd.Flags().String("name", "", "name substring")
	listTitlesCmd.Flags().Int("year", 0, "release year")

	createTitleCmd.Flags().String("name", "", "title name")
	createTitleCmd.Flags().Int("year", 0, "release year")
	createTitleCmd.Flags().String("description", "", "description")
	createTitleCmd.Flags().String("category", "", "category slug")
	createTitleCmd.Flags().StringSlice("genre", nil, "genre slugs (repeatable)")
	_ = createTitleCmd.MarkFlagRequired("name")
	_ = createTitleCmd.MarkFlagRequired("year")
}
