// ABOUTME: Booking listing and status commands
// ABOUTME: Filters map to query parameters; set-status loads the booking before changing it

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/bookdesk/internal/admin"
)

func (c *cli) bookingsCmd() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:     "bookings",
		Aliases: []string{"booking"},
		Short:   "Review bookings and change their status",
	})
	cmd.AddCommand(c.bookingsListCmd(), c.bookingsSetStatusCmd())
	return cmd
}

func (c *cli) bookingsListCmd() *cobra.Command {
	var status string
	var employeeID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			var filters admin.BookingFilters
			if cmd.Flags().Changed("status") {
				s, err := admin.ParseBookingStatus(status)
				if err != nil {
					return err
				}
				filters.Status = &s
			}
			if cmd.Flags().Changed("employee") {
				filters.EmployeeID = &employeeID
			}

			bookings, err := result(c.app.Bookings.Fetch(cmd.Context(), filters))
			if err != nil {
				return err
			}
			if len(bookings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bookings.")
				return nil
			}
			printBookings(cmd, bookings...)
			return nil
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "only bookings with this status ("+statusList()+")")
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "only bookings assigned to this employee id")
	return cmd
}

func statusList() string {
	names := make([]string, len(admin.BookingStatuses))
	for i, s := range admin.BookingStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func statusLabel(s admin.BookingStatus) string {
	switch s {
	case admin.StatusPending:
		return color.YellowString(string(s))
	case admin.StatusConfirmed:
		return color.CyanString(string(s))
	case admin.StatusCompleted:
		return color.GreenString(string(s))
	case admin.StatusCancelled:
		return color.HiBlackString(string(s))
	default:
		return string(s)
	}
}

func printBookings(cmd *cobra.Command, bookings ...admin.Booking) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCLIENT\tSERVICE\tEMPLOYEE\tSTATUS")
	for _, b := range bookings {
		service, employee := "", ""
		if b.Service != nil {
			service = b.Service.Name
		}
		if b.Employee != nil {
			employee = b.Employee.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.BookingDate, b.BookingTime, b.ClientName, orNone(service), orNone(employee), statusLabel(b.Status))
	}
	_ = tw.Flush()
}

func (c *cli) bookingsSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change a booking's status (" + statusList() + ")",
		Args:  cobra.ExactArgs(2),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := admin.ParseBookingStatus(args[1])
			if err != nil {
				return err
			}

			if _, err := result(c.app.Bookings.Fetch(cmd.Context(), admin.BookingFilters{})); err != nil {
				return err
			}
			updated, err := result(c.app.Bookings.UpdateStatus(cmd.Context(), id, status))
			if err != nil {
				return err
			}
			success(cmd, "Booking %d is now %s", id, updated.Status)
			return nil
		}),
	}
}
