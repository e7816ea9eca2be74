package main

import (
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/pkg/api"
	"github.com/gatehouse/gatehouse/pkg/models"
)

func newTargetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "target",
		Aliases: []string{"targets"},
		Short:   "Manage registered targets",
	}
	cmd.AddCommand(
		newTargetAddCommand(),
		newTargetModifyCommand(),
		newTargetRemoveCommand(),
		newTargetSearchCommand(),
	)
	return cmd
}

func newTargetAddCommand() *cobra.Command {
	var actions, attrArgs []string

	cmd := &cobra.Command{
		Use:   "add NAME TYPE",
		Short: "Register a new target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs, err := parseAttrs(attrArgs)
			if err != nil {
				return err
			}
			var target models.Target
			err = newClient().do(http.MethodPost, "/targets", nil, api.TargetPayload{
				Name:       args[0],
				Typestr:    args[1],
				Actions:    actions,
				Attributes: attrs,
			}, &target)
			if err != nil {
				return err
			}
			return printJSON(target)
		},
	}

	cmd.Flags().StringArrayVar(&actions, "action", nil, "action defined on the target (repeatable)")
	cmd.Flags().StringArrayVar(&attrArgs, "attr", nil, "attribute as key:val1,val2 (repeatable)")
	return cmd
}

func newTargetModifyCommand() *cobra.Command {
	var addActions, removeActions, addAttrArgs, removeAttrArgs []string

	cmd := &cobra.Command{
		Use:   "modify NAME TYPE",
		Short: "Modify a registered target",
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
			var target models.Target
			err = newClient().do(http.MethodPut, "/targets", nil, api.TargetPatch{
				Name:             args[0],
				Typestr:          args[1],
				AddActions:       addActions,
				RemoveActions:    removeActions,
				AddAttributes:    addAttrs,
				RemoveAttributes: removeAttrs,
			}, &target)
			if err != nil {
				return err
			}
			return printJSON(target)
		},
	}

	cmd.Flags().StringArrayVar(&addActions, "add-action", nil, "action to add (repeatable)")
	cmd.Flags().StringArrayVar(&removeActions, "remove-action", nil, "action to remove (repeatable)")
	cmd.Flags().StringArrayVar(&addAttrArgs, "add-attr", nil, "attribute values to add as key:val1,val2 (repeatable)")
	cmd.Flags().StringArrayVar(&removeAttrArgs, "remove-attr", nil, "attribute values to remove as key:val1,val2 (repeatable)")
	return cmd
}

func newTargetRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME TYPE",
		Short: "Remove a registered target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target models.Target
			if err := newClient().do(http.MethodDelete, "/targets/"+url.PathEscape(args[1])+"/"+url.PathEscape(args[0]), nil, nil, &target); err != nil {
				return err
			}
			return printJSON(target)
		},
	}
}

func newTargetSearchCommand() *cobra.Command {
	var name, typestr string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List targets, optionally filtered by name or type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if name != "" {
				query.Set("name", name)
			}
			if typestr != "" {
				query.Set("type", typestr)
			}
			var targets []models.Target
			if err := newClient().do(http.MethodGet, "/targets", query, nil, &targets); err != nil {
				return err
			}
			return printJSON(targets)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by target name")
	cmd.Flags().StringVar(&typestr, "type", "", "filter by target type")
	return cmd
}
