package main

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/models"
)

func newGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "Manage groups",
	}
	cmd.AddCommand(
		newGroupAddCommand(),
		newGroupModifyCommand(),
		newGroupRemoveCommand(),
		newGroupSearchCommand(),
	)
	return cmd
}

func newGroupAddCommand() *cobra.Command {
	var desc string
	var memberArgs, roles []string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a new group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := parseMembers(memberArgs)
			if err != nil {
				return err
			}
			var group models.Group
			err = newClient().do(http.MethodPost, "/groups", nil, api.GroupPayload{
				Name:        args[0],
				Description: desc,
				Members:     members,
				Roles:       roles,
			}, &group)
			if err != nil {
				return err
			}
			return printJSON(group)
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "group description")
	cmd.Flags().StringArrayVar(&memberArgs, "member", nil, "member as name:typestr (repeatable)")
	cmd.Flags().StringArrayVar(&roles, "role", nil, "role granted by the group (repeatable)")
	return cmd
}

func newGroupModifyCommand() *cobra.Command {
	var addMemberArgs, removeMemberArgs, addRoles, removeRoles []string

	cmd := &cobra.Command{
		Use:   "modify NAME",
		Short: "Modify a group's description, members, or roles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addMembers, err := parseMembers(addMemberArgs)
			if err != nil {
				return err
			}
			removeMembers, err := parseMembers(removeMemberArgs)
			if err != nil {
				return err
			}

			patch := api.GroupPatch{
				Name:          args[0],
				AddMembers:    addMembers,
				RemoveMembers: removeMembers,
				AddRoles:      addRoles,
				RemoveRoles:   removeRoles,
			}
			// Only a flag the caller actually set replaces the description.
			if cmd.Flags().Changed("desc") {
				desc, _ := cmd.Flags().GetString("desc")
				patch.Description = &desc
			}

			var group models.Group
			if err := newClient().do(http.MethodPut, "/groups", nil, patch, &group); err != nil {
				return err
			}
			return printJSON(group)
		},
	}

	cmd.Flags().String("desc", "", "replace the group description")
	cmd.Flags().StringArrayVar(&addMemberArgs, "add-member", nil, "member to add as name:typestr (repeatable)")
	cmd.Flags().StringArrayVar(&removeMemberArgs, "remove-member", nil, "member to remove as name:typestr (repeatable)")
	cmd.Flags().StringArrayVar(&addRoles, "add-role", nil, "role to add (repeatable)")
	cmd.Flags().StringArrayVar(&removeRoles, "remove-role", nil, "role to remove (repeatable)")
	return cmd
}

func newGroupRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var group models.Group
			if err := newClient().do(http.MethodDelete, "/groups/"+url.PathEscape(args[0]), nil, nil, &group); err != nil {
				return err
			}
			return printJSON(group)
		},
	}
}

func newGroupSearchCommand() *cobra.Command {
	var name, memberName, memberType, role string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List groups, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if name != "" {
				query.Set("name", name)
			}
			if memberName != "" {
				query.Set("member_name", memberName)
			}
			if memberType != "" {
				query.Set("member_type", memberType)
			}
			if role != "" {
				query.Set("role", role)
			}
			var groups []models.Group
			if err := newClient().do(http.MethodGet, "/groups", query, nil, &groups); err != nil {
				return err
			}
			return printJSON(groups)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by group name")
	cmd.Flags().StringVar(&memberName, "member-name", "", "filter by member name (requires --member-type)")
	cmd.Flags().StringVar(&memberType, "member-type", "", "filter by member type (requires --member-name)")
	cmd.Flags().StringVar(&role, "role", "", "filter by granted role")
	return cmd
}
