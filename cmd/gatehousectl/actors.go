package main

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/models"
)

func newActorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "actor",
		Aliases: []string{"actors"},
		Short:   "Manage registered actors",
	}
	cmd.AddCommand(
		newActorAddCommand(),
		newActorModifyCommand(),
		newActorRemoveCommand(),
		newActorSearchCommand(),
	)
	return cmd
}

func newActorAddCommand() *cobra.Command {
	var attrArgs []string

	cmd := &cobra.Command{
		Use:   "add NAME TYPE",
		Short: "Register a new actor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := parseAttrs(attrArgs)
			if err != nil {
				return err
			}
			var actor models.Actor
			err = newClient().do(http.MethodPost, "/actors", nil, api.ActorPayload{
				Name:       args[0],
				Typestr:    args[1],
				Attributes: attrs,
			}, &actor)
			if err != nil {
				return err
			}
			return printJSON(actor)
		},
	}

	cmd.Flags().StringArrayVar(&attrArgs, "attr", nil, "attribute as key:val1,val2 (repeatable)")
	return cmd
}

func newActorModifyCommand() *cobra.Command {
	var addAttrArgs, removeAttrArgs []string

	cmd := &cobra.Command{
		Use:   "modify NAME TYPE",
		Short: "Modify a registered actor's attributes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addAttrs, err := parseAttrs(addAttrArgs)
			if err != nil {
				return err
			}
			removeAttrs, err := parseAttrs(removeAttrArgs)
			if err != nil {
				return err
			}
			var actor models.Actor
			err = newClient().do(http.MethodPut, "/actors", nil, api.ActorPatch{
				Name:             args[0],
				Typestr:          args[1],
				AddAttributes:    addAttrs,
				RemoveAttributes: removeAttrs,
			}, &actor)
			if err != nil {
				return err
			}
			return printJSON(actor)
		},
	}

	cmd.Flags().StringArrayVar(&addAttrArgs, "add-attr", nil, "attribute values to add as key:val1,val2 (repeatable)")
	cmd.Flags().StringArrayVar(&removeAttrArgs, "remove-attr", nil, "attribute values to remove as key:val1,val2 (repeatable)")
	return cmd
}

func newActorRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME TYPE",
		Short: "Remove a registered actor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var actor models.Actor
			if err := newClient().do(http.MethodDelete, "/actors/"+url.PathEscape(args[1])+"/"+url.PathEscape(args[0]), nil, nil, &actor); err != nil {
				return err
			}
			return printJSON(actor)
		},
	}
}

func newActorSearchCommand() *cobra.Command {
	var name, typestr string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List actors, optionally filtered by name or type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if name != "" {
				query.Set("name", name)
			}
			if typestr != "" {
				query.Set("type", typestr)
			}
			var actors []models.Actor
			if err := newClient().do(http.MethodGet, "/actors", query, nil, &actors); err != nil {
				return err
			}
			return printJSON(actors)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by actor name")
	cmd.Flags().StringVar(&typestr, "type", "", "filter by actor type")
	return cmd
}
