// ABOUTME: Service catalog commands
// ABOUTME: Toggle and update load the collection first since they act on cached records

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2389/bookdesk/internal/admin"
)

func (c *cli) servicesCmd() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:     "services",
		Aliases: []string{"service"},
		Short:   "Manage the services you offer",
	})
	cmd.AddCommand(
		c.servicesListCmd(),
		c.servicesCreateCmd(),
		c.servicesUpdateCmd(),
		c.servicesToggleCmd(),
		c.servicesDeleteCmd(),
	)
	return cmd
}

func (c *cli) servicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List services",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			services, err := result(c.app.Services.FetchAll(cmd.Context(), nil))
			if err != nil {
				return err
			}
			if len(services) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No services yet. Add one with `bookdesk services create`.")
				return nil
			}
			printServices(cmd, services...)
			return nil
		}),
	}
}

func printServices(cmd *cobra.Command, services ...admin.Service) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDURATION\tSTATUS")
	for _, s := range services {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d min\t%s\n", s.ID, s.Name, s.Price, s.DurationMinutes, activeLabel(s.IsActive))
	}
	_ = tw.Flush()
}

func (c *cli) servicesCreateCmd() *cobra.Command {
	var in admin.ServiceCreate
	var description string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a service",
		Args:  cobra.NoArgs,
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			in.IsActive = !inactive
			created, err := result(c.app.Services.Create(cmd.Context(), in))
			if err != nil {
				return err
			}
			success(cmd, "Created service %d", created.ID)
			printServices(cmd, created)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "service name")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "price")
	cmd.Flags().IntVar(&in.DurationMinutes, "duration", 0, "duration in minutes")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "create the service hidden from customers")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func (c *cli) servicesUpdateCmd() *cobra.Command {
	var (
		name, description string
		price             float64
		duration          int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change service fields",
		Args:  cobra.ExactArgs(1),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in admin.ServiceUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = &name
			}
			if flags.Changed("description") {
				in.Description = &description
			}
			if flags.Changed("price") {
				in.Price = &price
			}
			if flags.Changed("duration") {
				in.DurationMinutes = &duration
			}

			if _, err := result(c.app.Services.FetchAll(cmd.Context(), nil)); err != nil {
				return err
			}
			updated, err := result(c.app.Services.Update(cmd.Context(), id, in))
			if err != nil {
				return err
			}
			success(cmd, "Updated service %d", id)
			printServices(cmd, updated)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "service name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().Float64Var(&price, "price", 0, "price")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in minutes")
	return cmd
}

func (c *cli) servicesToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch a service between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := result(c.app.Services.FetchAll(cmd.Context(), nil)); err != nil {
				return err
			}
			updated, err := result(c.app.Services.ToggleActive(cmd.Context(), id))
			if err != nil {
				return err
			}
			success(cmd, "Service %d is now %s", id, activeLabel(updated.IsActive))
			return nil
		}),
	}
}

func (c *cli) servicesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a service",
		Args:  cobra.ExactArgs(1),
		RunE: c.execute(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := result(c.app.Services.Delete(cmd.Context(), id)); err != nil {
				return err
			}
			success(cmd, "Deleted service %d", id)
			return nil
		}),
	}
}
