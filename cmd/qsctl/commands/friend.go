package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quantumshield/internal/domain"
)

// friendCmd groups the friendship-management subcommands.
func friendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Manage friend requests and friendships",
	}
	cmd.AddCommand(friendRequestCmd(), friendAcceptCmd(), friendRejectCmd(), friendListCmd(), friendPendingCmd(), friendRemoveCmd())
	return cmd
}

func friendRequestCmd() *cobra.Command {
	var receiverID int64
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send a friend request to another user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id required")
			}
			if receiverID == 0 {
				return fmt.Errorf("--to required")
			}
			req, err := appCtx.Friendships.Create(context.Background(), domain.UserID(userID), domain.UserID(receiverID))
			if err != nil {
				return err
			}
			fmt.Printf("Request %s sent to user %d\n", req.ID, receiverID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&receiverID, "to", 0, "recipient's numeric user id")
	return cmd
}

func friendAcceptCmd() *cobra.Command {
	var requestID string
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept a pending friend request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id required")
			}
			if requestID == "" {
				return fmt.Errorf("--request-id required")
			}
			f, err := appCtx.Friendships.Accept(context.Background(), domain.UserID(userID), domain.FriendRequestID(requestID))
			if err != nil {
				return err
			}
			fmt.Printf("Now friends: %d <-> %d\n", f.A, f.B)
			return nil
		},
	}
	cmd.Flags().StringVar(&requestID, "request-id", "", "id of the request to accept")
	return cmd
}

func friendRejectCmd() *cobra.Command {
	var requestID string
	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Reject a pending friend request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id required")
			}
			if requestID == "" {
				return fmt.Errorf("--request-id required")
			}
			if err := appCtx.Friendships.Reject(context.Background(), domain.UserID(userID), domain.FriendRequestID(requestID)); err != nil {
				return err
			}
			fmt.Printf("Rejected request %s\n", requestID)
			return nil
		},
	}
	cmd.Flags().StringVar(&requestID, "request-id", "", "id of the request to reject")
	return cmd
}

func friendPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List friend requests awaiting your response",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id required")
			}
			reqs, err := appCtx.Friendships.ListPending(context.Background(), domain.UserID(userID))
			if err != nil {
				return err
			}
			for _, r := range reqs {
				fmt.Printf("%s  from=%d  created=%d\n", r.ID, r.SenderID, r.CreatedAt)
			}
			return nil
		},
	}
}

func friendListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your friends",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id required")
			}
			friends, err := appCtx.Friendships.ListFriends(context.Background(), domain.UserID(userID))
			if err != nil {
				return err
			}
			for _, f := range friends {
				other := f.A
				if other == domain.UserID(userID) {
					other = f.B
				}
				fmt.Printf("%d\n", other)
			}
			return nil
		},
	}
}

func friendRemoveCmd() *cobra.Command {
	var otherID int64
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an existing friendship",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id required")
			}
			if otherID == 0 {
				return fmt.Errorf("--with required")
			}
			return appCtx.Friendships.Remove(context.Background(), domain.UserID(userID), domain.UserID(otherID))
		},
	}
	cmd.Flags().Int64Var(&otherID, "with", 0, "the friend's numeric user id")
	return cmd
}
