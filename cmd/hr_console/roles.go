package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/hr-console/internal/roles"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage job roles and their skills",
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles and skills",
	Args:  cobra.NoArgs,
	RunE: withRoles(func(*cobra.Command, *roles.Registry, []string) error {
		return nil
	}),
}

var rolesAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a role with no skills",
	Args:  cobra.ExactArgs(1),
	RunE: withRoles(func(cmd *cobra.Command, reg *roles.Registry, args []string) error {
		created, err := reg.AddRole(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if created == nil {
			return errors.New("role name is empty")
		}
		return nil
	}),
}

var rolesRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a role",
	Args:  cobra.ExactArgs(2),
	RunE: withRole(func(cmd *cobra.Command, reg *roles.Registry, args []string) error {
		return reg.RenameRole(cmd.Context(), args[0], args[1])
	}),
}

var rolesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a role",
	Args:  cobra.ExactArgs(1),
	RunE: withRole(func(cmd *cobra.Command, reg *roles.Registry, args []string) error {
		return reg.DeleteRole(cmd.Context(), args[0])
	}),
}

var rolesAddSkillCmd = &cobra.Command{
	Use:   "add-skill ID SKILL",
	Short: "Add a skill to a role",
	Args:  cobra.ExactArgs(2),
	RunE: withRole(func(cmd *cobra.Command, reg *roles.Registry, args []string) error {
		return reg.AddSkill(cmd.Context(), args[0], args[1])
	}),
}

var rolesRemoveSkillCmd = &cobra.Command{
	Use:   "remove-skill ID SKILL",
	Short: "Remove every occurrence of a skill from a role",
	Args:  cobra.ExactArgs(2),
	RunE: withRole(func(cmd *cobra.Command, reg *roles.Registry, args []string) error {
		return reg.RemoveSkill(cmd.Context(), args[0], args[1])
	}),
}

func init() {
	rolesCmd.AddCommand(rolesListCmd, rolesAddCmd, rolesRenameCmd, rolesDeleteCmd, rolesAddSkillCmd, rolesRemoveSkillCmd)
	rootCmd.AddCommand(rolesCmd)
}

type rolesAction func(cmd *cobra.Command, reg *roles.Registry, args []string) error

// withRoles loads the registry, runs action and prints the resulting roles.
func withRoles(action rolesAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.reportMetrics()

		reg := a.roles()
		if err := reg.Load(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load roles: %w", err)
		}
		if err := action(cmd, reg, args); err != nil {
			return err
		}
		a.printer.PrintRoles(reg.Roles())
		return nil
	}
}

// withRole is withRoles for actions on an existing role given as args[0].
func withRole(action rolesAction) func(*cobra.Command, []string) error {
	return withRoles(func(cmd *cobra.Command, reg *roles.Registry, args []string) error {
		if _, ok := reg.Get(args[0]); !ok {
			return fmt.Errorf("role %s not found", args[0])
		}
		return action(cmd, reg, args)
	})
}
