package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Discuss reviews",
}

var listCommentsCmd = &cobra.Command{
	Use:   "list [title-id] [review-id]",
	Short: "List the comments on a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, reviewID, err := threadArgs(args)
		if err != nil {
			return err
		}
		result, err := newClient().ListComments(titleID, reviewID, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, c := range result.Data {
			fmt.Printf("  [%d] %s (%s): %s\n", c.ID, c.Author, c.PubDate.Format("2006-01-02 15:04"), c.Text)
		}
		return nil
	},
}

var postCommentCmd = &cobra.Command{
	Use:   "post [title-id] [review-id] [text]",
	Short: "Comment on a review",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, reviewID, err := threadArgs(args)
		if err != nil {
			return err
		}
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		comment, err := c.PostComment(titleID, reviewID, args[2])
		if err != nil {
			return fmt.Errorf("failed to post comment: %w", err)
		}
		success("Comment %d posted", comment.ID)
		return nil
	},
}

var deleteCommentCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id] [comment-id]",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, reviewID, err := threadArgs(args)
		if err != nil {
			return err
		}
		commentID, err := parseID(args[2], "comment")
		if err != nil {
			return err
		}
		c, err := authenticatedClient()
		if err != nil {
			return err
		}
		if err := c.DeleteComment(titleID, reviewID, commentID); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		success("Comment %d deleted", commentID)
		return nil
	},
}

func threadArgs(args []string) (int64, int64, error) {
	titleID, err := parseID(args[0], "title")
	if err != nil {
		return 0, 0, err
	}
	reviewID, err := parseID(args[1], "review")
	if err != nil {
		return 0, 0, err
	}
	return titleID, reviewID, nil
}

func init() {
	rootCmd.AddCommand(commentCmd)
	commentCmd.AddCommand(listCommentsCmd, postCommentCmd, deleteCommentCmd)
	addPageFlags(listCommentsCmd)
}
