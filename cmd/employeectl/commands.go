package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"employeedir/internal/auth"
	"employeedir/internal/client"
	"employeedir/internal/directory"
)

var errInvalid = errors.New("request rejected")

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("EMPLOYEECTL")
	v.AutomaticEnv()
	v.SetDefault("url", "http://localhost:8080")

	root := &cobra.Command{
		Use:           "employeectl",
		Short:         "Manage the employee directory from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().String("url", "", "base URL of the employeedir server (env EMPLOYEECTL_URL)")
	root.PersistentFlags().String("token", "", "bearer token sent with requests (env EMPLOYEECTL_TOKEN)")
	_ = v.BindPFlag("url", root.PersistentFlags().Lookup("url"))
	_ = v.BindPFlag("token", root.PersistentFlags().Lookup("token"))

	newController := func(cmd *cobra.Command, assumeYes bool) *directory.Controller {
		api := client.New(v.GetString("url"), client.WithToken(v.GetString("token")))
		confirm := directory.ConfirmFunc(func(prompt string) bool {
			if assumeYes {
				return true
			}
			return promptYes(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
		})
		log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelError}))
		return directory.NewController(api, confirm, log)
	}

	root.AddCommand(
		newListCmd(newController),
		newCreateCmd(newController),
		newUpdateCmd(v, newController),
		newDeleteCmd(newController),
		newTokenCmd(),
	)
	return root
}

type controllerFactory func(cmd *cobra.Command, assumeYes bool) *directory.Controller

func newListCmd(newController controllerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newController(cmd, false)
			if err := c.Refresh(cmd.Context()); err != nil {
				return err
			}
			return printEmployees(cmd.OutOrStdout(), c.State())
		},
	}
}

func newCreateCmd(newController controllerFactory) *cobra.Command {
	var name, email, position string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newController(cmd, false)
			c.SetField("name", name)
			c.SetField("email", email)
			c.SetField("position", position)
			return submit(cmd.Context(), cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&position, "position", "", "job title")
	return cmd
}

func newUpdateCmd(v *viper.Viper, newController controllerFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an employee; omitted flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			api := client.New(v.GetString("url"), client.WithToken(v.GetString("token")))
			current, err := api.Get(cmd.Context(), id)
			if err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("employee %d not found", id)
				}
				return err
			}

			c := newController(cmd, false)
			c.Edit(current)
			for _, field := range []string{"name", "email", "position"} {
				if cmd.Flags().Changed(field) {
					value, _ := cmd.Flags().GetString(field)
					c.SetField(field, value)
				}
			}
			return submit(cmd.Context(), cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().String("name", "", "full name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("position", "", "job title")
	return cmd
}

func newDeleteCmd(newController controllerFactory) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c := newController(cmd, yes)
			deleted, err := c.Delete(cmd.Context(), id)
			if err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("employee %d not found", id)
				}
				return err
			}
			if !deleted {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.State().Notice)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var secret, actor string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token that attributes changes to an actor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := auth.GenerateToken(secret, actor, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret shared with the server")
	cmd.Flags().StringVar(&actor, "actor", "", "actor recorded in the audit log")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func submit(ctx context.Context, out io.Writer, c *directory.Controller) error {
	err := c.Submit(ctx)
	state := c.State()
	if err == nil {
		fmt.Fprintln(out, state.Notice)
		return printEmployees(out, state)
	}
	if len(state.FieldErrors) == 0 {
		return err
	}
	fields := make([]string, 0, len(state.FieldErrors))
	for field := range state.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(out, "%s: %s\n", field, strings.Join(state.FieldErrors[field], ", "))
	}
	return errInvalid
}

func printEmployees(out io.Writer, state directory.State) error {
	if len(state.Employees) == 0 {
		_, err := fmt.Fprintln(out, "No employees found.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPOSITION")
	for _, emp := range state.Employees {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", emp.ID, emp.Name, emp.Email, emp.Position)
	}
	return tw.Flush()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid employee id %q", raw)
	}
	return id, nil
}

func promptYes(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
