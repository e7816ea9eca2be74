package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/pkg/policy"
)

func newPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "policy",
		Aliases: []string{"policies"},
		Short:   "Manage policy rules",
	}
	cmd.AddCommand(
		newPolicyAddCommand(),
		newPolicyModifyCommand(),
		newPolicyRemoveCommand(),
		newPolicySearchCommand(),
	)
	return cmd
}

// readRule loads a rule definition from the given file, or from stdin
// when the path is "-".
func readRule(path string) (*policy.Rule, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule: %w", err)
	}

	var rule policy.Rule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return nil, fmt.Errorf("failed to parse rule: %w", err)
	}
	return &rule, nil
}

func newPolicyAddCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a policy rule from a JSON definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := readRule(file)
			if err != nil {
				return err
			}
			var added policy.Rule
			if err := newClient().do(http.MethodPost, "/policies", nil, rule, &added); err != nil {
				return err
			}
			return printJSON(added)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "rule JSON file, or - for stdin")
	return cmd
}

func newPolicyModifyCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "modify",
		Short: "Replace a policy rule with a new JSON definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := readRule(file)
			if err != nil {
				return err
			}
			var updated policy.Rule
			if err := newClient().do(http.MethodPut, "/policies", nil, rule, &updated); err != nil {
				return err
			}
			return printJSON(updated)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "rule JSON file, or - for stdin")
	return cmd
}

func newPolicyRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a policy rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rule policy.Rule
			if err := newClient().do(http.MethodDelete, "/policies/"+url.PathEscape(args[0]), nil, nil, &rule); err != nil {
				return err
			}
			return printJSON(rule)
		},
	}
}

func newPolicySearchCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List policy rules, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if name != "" {
				query.Set("name", name)
			}
			var rules []policy.Rule
			if err := newClient().do(http.MethodGet, "/policies", query, nil, &rules); err != nil {
				return err
			}
			return printJSON(rules)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by rule name")
	return cmd
}
