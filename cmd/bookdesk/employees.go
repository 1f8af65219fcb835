// ABOUTME: Employee commands: staff members and the services they perform
// ABOUTME: Update and toggle load the collection first since they act on cached records

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/bookdesk/internal/admin"
)

func (c *cli) employeesCmd() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:     "employees",
		Aliases: []string{"employee", "staff"},
		Short:   "Manage employees",
	})
	cmd.AddCommand(
		c.employeesListCmd(),
		c.employeesCreateCmd(),
		c.employeesUpdateCmd(),
		c.employeesToggleCmd(),
		c.employeesDeleteCmd(),
	)
	return cmd
}

func (c *cli) employeesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			employees, err := result(c.app.Employees.FetchAll(cmd.Context(), nil))
			if err != nil {
				return err
			}
			if len(employees) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No employees yet. Add one with `bookdesk employees create`.")
				return nil
			}
			printEmployees(cmd, employees...)
			return nil
		}),
	}
}

func printEmployees(cmd *cobra.Command, employees ...admin.Employee) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tSERVICES\tSTATUS")
	for _, e := range employees {
		ids := make([]string, len(e.ServiceIDs))
		for i, id := range e.ServiceIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Phone, orNone(strings.Join(ids, ",")), activeLabel(e.IsActive))
	}
	_ = tw.Flush()
}

func (c *cli) employeesCreateCmd() *cobra.Command {
	var in admin.EmployeeCreate
	var photoURL string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("photo-url") {
				in.PhotoURL = &photoURL
			}
			created, err := result(c.app.Employees.Create(cmd.Context(), in))
			if err != nil {
				return err
			}
			success(cmd, "Created employee %d", created.ID)
			printEmployees(cmd, created)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "employee name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "employee phone")
	cmd.Flags().StringVar(&photoURL, "photo-url", "", "photo URL")
	cmd.Flags().Int64SliceVar(&in.ServiceIDs, "service", nil, "id of a service the employee performs (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func (c *cli) employeesUpdateCmd() *cobra.Command {
	var (
		name, phone, photoURL string
		clearPhoto            bool
		serviceIDs            []int64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change employee fields",
		Args:  cobra.ExactArgs(1),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in admin.EmployeeUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("phone") {
				in.Phone = &phone
			}
			if flags.Changed("photo-url") {
				in.PhotoURL = &photoURL
			}
			if flags.Changed("service") {
				in.ServiceIDs = &serviceIDs
			}
			in.ClearPhoto = clearPhoto

			if _, err := result(c.app.Employees.FetchAll(cmd.Context(), nil)); err != nil {
				return err
			}
			updated, err := result(c.app.Employees.Update(cmd.Context(), id, in))
			if err != nil {
				return err
			}
			success(cmd, "Updated employee %d", id)
			printEmployees(cmd, updated)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "employee name")
	cmd.Flags().StringVar(&phone, "phone", "", "employee phone")
	cmd.Flags().StringVar(&photoURL, "photo-url", "", "photo URL")
	cmd.Flags().BoolVar(&clearPhoto, "clear-photo", false, "remove the employee's photo")
	cmd.Flags().Int64SliceVar(&serviceIDs, "service", nil, "id of a service the employee performs (repeatable, replaces the list)")
	cmd.MarkFlagsMutuallyExclusive("photo-url", "clear-photo")
	return cmd
}

func (c *cli) employeesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch an employee between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := result(c.app.Employees.FetchAll(cmd.Context(), nil)); err != nil {
				return err
			}
			updated, err := result(c.app.Employees.ToggleActive(cmd.Context(), id))
			if err != nil {
				return err
			}
			success(cmd, "Employee %d is now %s", id, activeLabel(updated.IsActive))
			return nil
		}),
	}
}

func (c *cli) employeesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := result(c.app.Employees.Delete(cmd.Context(), id)); err != nil {
				return err
			}
			success(cmd, "Deleted employee %d", id)
			return nil
		}),
	}
}
