// ABOUTME: Session commands: login, register, logout and status
// ABOUTME: Login and register are the guard's login route; status is its home route

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/bookdesk/internal/session"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your business account",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password)
			if err != nil {
				return err
			}
			if _, err := result(c.app.Session.Login(cmd.Context(), email, pw)); err != nil {
				return err
			}
			c.greet(cmd)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (default: $BOOKDESK_PASSWORD or prompt)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var in session.RegisterInput
	var password, address, phone string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a business account and sign in",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			pw, err := c.password(password)
			if err != nil {
				return err
			}
			in.Password = pw
			if cmd.Flags().Changed("address") {
				in.Address = &address
			}
			if cmd.Flags().Changed("phone") {
				in.Phone = &phone
			}
			if _, err := result(c.app.Session.Register(cmd.Context(), in)); err != nil {
				return err
			}
			c.greet(cmd)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (default: $BOOKDESK_PASSWORD or prompt)")
	cmd.Flags().StringVar(&in.Name, "name", "", "business name")
	cmd.Flags().StringVar(&in.BusinessType, "type", "", "business type (car_wash, auto_repair, tire_service, beauty_salon)")
	cmd.Flags().StringVar(&address, "address", "", "business address")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (c *cli) greet(cmd *cobra.Command) {
	if p, ok := c.app.Session.Profile(); ok {
		success(cmd, "Logged in as %s", p.Name)
		return
	}
	success(cmd, "Logged in")
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored credentials",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			c.app.Session.Logout()
			success(cmd, "Logged out")
			return nil
		}),
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return requireAuth(&cobra.Command{
		Use:   "status",
		Short: "Show the signed-in business and session",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			heading(cmd, "Session")
			field(cmd, "API", c.app.Config.API.BaseURL)

			if p, ok := c.app.Session.Profile(); ok {
				field(cmd, "Business", fmt.Sprintf("%s (%s)", p.Name, p.BusinessType))
				field(cmd, "Address", orNone(p.Address))
			} else {
				field(cmd, "Business", color.YellowString("profile unavailable"))
			}

			if claims, ok := c.app.Session.Claims(); ok {
				field(cmd, "Subject", orNone(claims.Subject))
				if !claims.ExpiresAt.IsZero() {
					field(cmd, "Token expires", claims.ExpiresAt.Local().Format(time.RFC1123))
				}
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}),
	})
}
