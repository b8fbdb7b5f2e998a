package command

import (
	"fmt"
	"strconv"

	"reviewhub/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Write and read reviews",
	Long:  `Each user may review a title once, with a score from 1 to 10.`,
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List the reviews of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		result, err := newClient().ListReviews(titleID, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No reviews yet.")
			return nil
		}

		fmt.Printf("Reviews (page %d of %d, %d total):\n", result.Page, result.TotalPages, result.Total)
		for _, r := range result.Data {
			fmt.Printf("  [%d] %s rated %d/10 on %s\n", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02"))
			fmt.Printf("      %s\n", r.Text)
		}
		return nil
	},
}

var submitReviewCmd = &cobra.Command{
	Use:   "submit [title-id] [score]",
	Short: "Review a title (score 1-10)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score: %w", err)
		}
		text, _ := cmd.Flags().GetString("text")

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		r, err := c.SubmitReview(titleID, text, score)
		if err != nil {
			return fmt.Errorf("failed to submit review: %w", err)
		}

		success("Review %d submitted: %d/10", r.ID, r.Score)
		printRating(titleID)
		return nil
	},
}

var amendReviewCmd = &cobra.Command{
	Use:   "amend [title-id] [review-id]",
	Short: "Change the text or score of a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}

		var req dto.UpdateReviewRequest
		if cmd.Flags().Changed("text") {
			text, _ := cmd.Flags().GetString("text")
			req.Text = &text
		}
		if cmd.Flags().Changed("score") {
			score, _ := cmd.Flags().GetInt("score")
			req.Score = &score
		}
		if req.Text == nil && req.Score == nil {
			return fmt.Errorf("nothing to change: pass --text and/or --score")
		}

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		r, err := c.AmendReview(titleID, reviewID, req)
		if err != nil {
			return fmt.Errorf("failed to amend review: %w", err)
		}

		success("Review %d now %d/10", r.ID, r.Score)
		printRating(titleID)
		return nil
	},
}

var withdrawReviewCmd = &cobra.Command{
	Use:   "withdraw [title-id] [review-id]",
	Short: "Delete a review and its comments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := parseID(args[0], "title")
		if err != nil {
			return err
		}
		reviewID, err := parseID(args[1], "review")
		if err != nil {
			return err
		}

		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		if err := c.WithdrawReview(titleID, reviewID); err != nil {
			return fmt.Errorf("failed to withdraw review: %w", err)
		}

		success("Review %d withdrawn", reviewID)
		printRating(titleID)
		return nil
	},
}

// printRating shows the title's rating after a review change.
func printRating(titleID int64) {
	t, err := newClient().GetTitle(titleID)
	if err != nil {
		return
	}
	fmt.Printf("%s is now rated %s\n", t.Name, formatRating(t.Rating))
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(listReviewsCmd, submitReviewCmd, amendReviewCmd, withdrawReviewCmd)

	addPageFlags(listReviewsCmd)

	submitReviewCmd.Flags().StringP("text", "t", "", "review text")
	_ = submitReviewCmd.MarkFlagRequired("text")

	amendReviewCmd.Flags().StringP("text", "t", "", "new review text")
	amendReviewCmd.Flags().IntP("score", "s", 0, "new score (1-10)")
}
