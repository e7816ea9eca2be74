package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/pkg/api"
)

func newCheckCommand() *cobra.Command {
	var (
		actorArg      string
		actorAttrArgs []string
		envArgs       []string
		targetArg     string
		action        string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Ask the server for an access decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actorName, actorType, ok := strings.Cut(actorArg, ":")
			if !ok || actorName == "" || actorType == "" {
				return fmt.Errorf("--actor must have the form name:typestr")
			}
			targetName, targetType, ok := strings.Cut(targetArg, ":")
			if !ok || targetName == "" || targetType == "" {
				return fmt.Errorf("--target must have the form name:typestr")
			}

			actorAttrs, err := parseAttrs(actorAttrArgs)
			if err != nil {
				return err
			}
			envAttrs, err := parseAttrs(envArgs)
			if err != nil {
				return err
			}

			var decision api.DecisionResponse
			err = newClient().do(http.MethodPost, "/check", nil, api.CheckPayload{
				Actor: api.CheckActor{
					Name:       actorName,
					Typestr:    actorType,
					Attributes: actorAttrs,
				},
				EnvAttributes: envAttrs,
				Target: api.CheckTarget{
					Name:    targetName,
					Typestr: targetType,
					Action:  action,
				},
			}, &decision)
			if err != nil {
				return err
			}

			fmt.Println(decision.Decision)
			return nil
		},
	}

	cmd.Flags().StringVar(&actorArg, "actor", "", "acting entity as name:typestr")
	cmd.Flags().StringArrayVar(&actorAttrArgs, "actor-attr", nil, "extra actor attribute as key:val1,val2 (repeatable)")
	cmd.Flags().StringArrayVar(&envArgs, "env", nil, "environment attribute as key:val1,val2 (repeatable)")
	cmd.Flags().StringVar(&targetArg, "target", "", "target as name:typestr")
	cmd.Flags().StringVar(&action, "action", "", "requested action on the target")
	cmd.MarkFlagRequired("actor")  //nolint:errcheck
	cmd.MarkFlagRequired("target") //nolint:errcheck
	return cmd
}
