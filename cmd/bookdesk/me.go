// ABOUTME: Personal profile commands for the signed-in account
// ABOUTME: Covers profile edits and avatar upload and removal

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/2389/bookdesk/internal/consumer"
)

func (c *cli) meCmd() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:   "me",
		Short: "Show or edit your personal profile",
	})
	cmd.AddCommand(c.meShowCmd(), c.meUpdateCmd(), c.meAvatarUploadCmd(), c.meAvatarDeleteCmd())
	return cmd
}

func printProfile(cmd *cobra.Command, p consumer.UserProfile) {
	gender := ""
	if p.Gender != nil {
		gender = string(*p.Gender)
	}
	heading(cmd, "Profile")
	field(cmd, "ID", strconv.FormatInt(p.ID, 10))
	field(cmd, "Name", p.Name)
	field(cmd, "Email", orNone(deref(p.Email)))
	field(cmd, "Phone", orNone(deref(p.Phone)))
	field(cmd, "Gender", orNone(gender))
	field(cmd, "Avatar", orNone(deref(p.AvatarURL)))
	fmt.Fprintln(cmd.OutOrStdout())
}

func (c *cli) meShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			p, err := result(c.app.Me.Fetch(cmd.Context()))
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		}),
	}
}

func (c *cli) meUpdateCmd() *cobra.Command {
	var name, gender, email string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			var in consumer.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("gender") {
				g := consumer.Gender(gender)
				in.Gender = &g
			}
			if flags.Changed("email") {
				in.Email = &email
			}

			p, err := result(c.app.Me.Update(cmd.Context(), in))
			if err != nil {
				return err
			}
			success(cmd, "Profile updated")
			printProfile(cmd, p)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&gender, "gender", "", "male, female or other")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	return cmd
}

func (c *cli) meAvatarUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar-upload <image>",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening avatar: %w", err)
			}
			defer f.Close()

			p, err := result(c.app.Me.UploadAvatar(cmd.Context(), filepath.Base(args[0]), f))
			if err != nil {
				return err
			}
			success(cmd, "Avatar uploaded: %s", deref(p.AvatarURL))
			return nil
		}),
	}
}

func (c *cli) meAvatarDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar-delete",
		Short: "Remove your avatar",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			if _, err := result(c.app.Me.DeleteAvatar(cmd.Context())); err != nil {
				return err
			}
			success(cmd, "Avatar removed")
			return nil
		}),
	}
}
