// ABOUTME: Business profile and opening hours commands
// ABOUTME: Updates start from the server's current values so unset flags keep them

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/bookdesk/internal/admin"
	"github.com/2389/bookdesk/internal/schedule"
)

func (c *cli) businessCmd() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:   "business",
		Short: "Show or edit the business profile",
	})
	cmd.AddCommand(c.businessShowCmd(), c.businessUpdateCmd())
	return cmd
}

func (c *cli) businessShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the business profile",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			b, err := result(c.app.Business.Fetch(cmd.Context()))
			if err != nil {
				return err
			}
			printBusiness(cmd, b)
			return nil
		}),
	}
}

func printBusiness(cmd *cobra.Command, b admin.Business) {
	heading(cmd, "Business")
	field(cmd, "ID", strconv.FormatInt(b.ID, 10))
	field(cmd, "Name", b.Name)
	field(cmd, "Type", string(b.BusinessType))
	field(cmd, "Address", orNone(b.Address))
	field(cmd, "Phones", orNone(strings.Join(b.Phones, ", ")))
	field(cmd, "Email", orNone(b.Email))
	field(cmd, "Description", orNone(deref(b.Description)))
	fmt.Fprintln(cmd.OutOrStdout())
}

func (c *cli) businessUpdateCmd() *cobra.Command {
	var (
		name, businessType, address, description string
		phones                                   []string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change business profile fields",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			current, err := result(c.app.Business.Fetch(cmd.Context()))
			if err != nil {
				return err
			}

			in := admin.UpdateFrom(current)
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = name
			}
			if flags.Changed("type") {
				in.BusinessType = admin.BusinessType(businessType)
			}
			if flags.Changed("address") {
				in.Address = address
			}
			if flags.Changed("phone") {
				in.Phones = phones
			}
			if flags.Changed("description") {
				in.Description = &description
			}

			updated, err := result(c.app.Business.Update(cmd.Context(), in))
			if err != nil {
				return err
			}
			c.app.Session.SetProfile(updated)
			success(cmd, "Business profile updated")
			printBusiness(cmd, updated)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "business name")
	cmd.Flags().StringVar(&businessType, "type", "", "business type")
	cmd.Flags().StringVar(&address, "address", "", "business address")
	cmd.Flags().StringSliceVar(&phones, "phone", nil, "contact phone (repeatable, replaces the list)")
	cmd.Flags().StringVar(&description, "description", "", "business description")
	return cmd
}

func (c *cli) hoursCmd() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:   "hours",
		Short: "Show or edit weekly opening hours",
	})
	cmd.AddCommand(c.hoursShowCmd(), c.hoursSetCmd())
	return cmd
}

func (c *cli) hoursShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show weekly opening hours",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			week, err := result(c.app.Hours.Fetch(cmd.Context()))
			if err != nil {
				return err
			}
			printWeek(cmd, week)
			return nil
		}),
	}
}

func printWeek(cmd *cobra.Command, week schedule.Week) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "DAY\tHOURS")
	for _, day := range week {
		hours := color.HiBlackString("closed")
		if day.IsOpen {
			hours = day.OpenTime + "-" + day.CloseTime
		}
		if day.Error != "" {
			hours += "  " + color.RedString(day.Error)
		}
		fmt.Fprintf(tw, "%s\t%s\n", day.Name, hours)
	}
	_ = tw.Flush()
}

func (c *cli) hoursSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <day> <HH:MM-HH:MM|closed> [<day> <hours>...]",
		Short: "Change the hours of one or more days",
		Long: `Change the hours of one or more days. Days are names (monday, mon) or
numbers from 0 (Monday) to 6 (Sunday). Other days keep their current hours.

  bookdesk hours set mon 09:00-18:00 sat 10:00-14:00 sun closed`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected <day> <hours> pairs, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			week, err := result(c.app.Hours.Fetch(cmd.Context()))
			if err != nil {
				return err
			}

			for i := 0; i < len(args); i += 2 {
				day, err := parseDay(args[i])
				if err != nil {
					return err
				}
				if err := applyHours(&week[day], args[i+1]); err != nil {
					return err
				}
			}

			updated, err := result(c.app.Hours.Update(cmd.Context(), &week))
			if err != nil {
				if err.Error() == admin.MsgInvalidHours {
					printWeek(cmd, week)
				}
				return err
			}
			success(cmd, "Opening hours updated")
			printWeek(cmd, updated)
			return nil
		}),
	}
}

// parseDay accepts a day number (0 = Monday) or a day name of at least three letters.
func parseDay(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= schedule.DaysPerWeek {
			return 0, fmt.Errorf("day %d out of range 0-6", n)
		}
		return n, nil
	}
	lower := strings.ToLower(s)
	if len(lower) >= 3 {
		for i, name := range schedule.DayNames {
			if strings.HasPrefix(strings.ToLower(name), lower) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}

// applyHours sets day from "closed" or "HH:MM-HH:MM". Times are checked by Validate.
func applyHours(day *schedule.DaySchedule, value string) error {
	if strings.EqualFold(value, "closed") {
		day.IsOpen = false
		return nil
	}
	open, closing, ok := strings.Cut(value, "-")
	if !ok {
		return fmt.Errorf("hours for %s must be HH:MM-HH:MM or closed, got %q", day.Name, value)
	}
	day.IsOpen = true
	day.OpenTime = open
	day.CloseTime = closing
	return nil
}
