package command

import (
	"fmt"

	"reviewhub/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// taxonCommand builds the list/create/delete group shared by categories and genres.
func taxonCommand(kind, singular string) *cobra.Command {
	group := &cobra.Command{
		Use:   singular,
		Short: fmt.Sprintf("Manage %s", kind),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			c := newClient()
			var (
				result *dto.Paginated[dto.TaxonResponse]
				err    error
			)
			if kind == "categories" {
				result, err = c.ListCategories(search, page, pageSize)
			} else {
				result, err = c.ListGenres(search, page, pageSize)
			}
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind, err)
			}
			for _, t := range result.Data {
				fmt.Printf("  %-20s %s\n", t.Slug, t.Name)
			}
			return nil
		},
	}
	addPageFlags(list)
	list.Flags().String("search", "", "name substring")

	create := &cobra.Command{
		Use:   "create [slug] [name]",
		Short: fmt.Sprintf("Create a %s (admin)", singular),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authenticatedClient()
			if err != nil {
				return err
			}
			t, err := c.CreateTaxon(kind, dto.CreateTaxonRequest{Slug: args[0], Name: args[1]})
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", singular, err)
			}
			success("Created %s %s", singular, t.Slug)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete [slug]",
		Short: fmt.Sprintf("Delete a %s (admin)", singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authenticatedClient()
			if err != nil {
				return err
			}
			if err := c.DeleteTaxon(kind, args[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", singular, err)
			}
			success("Deleted %s %s", singular, args[0])
			return nil
		},
	}

	group.AddCommand(list, create, del)
	return group
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role [username] [user|moderator|admin]",
	Short: "Change a user's role (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		u, err := c.SetRole(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to change role: %w", err)
		}
		success("%s is now %s", u.Username, u.Role)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taxonCommand("categories", "category"), taxonCommand("genres", "genre"), setRoleCmd)
}
