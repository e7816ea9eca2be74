package main

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/models"
)

func newRoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "role",
		Aliases: []string{"roles"},
		Short:   "Manage roles",
	}

	var desc string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a new role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var role models.Role
			err := newClient().do(http.MethodPost, "/roles", nil, api.RolePayload{
				Name:        args[0],
				Description: desc,
			}, &role)
			if err != nil {
				return err
			}
			return printJSON(role)
		},
	}
	add.Flags().StringVar(&desc, "desc", "", "role description")

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a role, detaching it from every group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var role models.Role
			if err := newClient().do(http.MethodDelete, "/roles/"+url.PathEscape(args[0]), nil, nil, &role); err != nil {
				return err
			}
			return printJSON(role)
		},
	}

	var name string
	search := &cobra.Command{
		Use:   "search",
		Short: "List roles, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if name != "" {
				query.Set("name", name)
			}
			var roles []models.Role
			if err := newClient().do(http.MethodGet, "/roles", query, nil, &roles); err != nil {
				return err
			}
			return printJSON(roles)
		},
	}
	search.Flags().StringVar(&name, "name", "", "filter by role name")

	cmd.AddCommand(add, remove, search)
	return cmd
}
