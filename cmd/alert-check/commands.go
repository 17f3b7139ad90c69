package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-security-alert-watcher/internal/config"
	"github.com/mr1hm/go-security-alert-watcher/internal/events"
	"github.com/mr1hm/go-security-alert-watcher/internal/ghclient"
	"github.com/mr1hm/go-security-alert-watcher/internal/membership"
	"github.com/mr1hm/go-security-alert-watcher/internal/models"
	"github.com/mr1hm/go-security-alert-watcher/internal/policy"
)

var severityFallback string

var severityCmd = &cobra.Command{
	Use:   "severity <label>",
	Short: "Show how a severity label is parsed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fallback := models.ParseSeverity(severityFallback, models.SeverityAll)
		s := models.ParseSeverity(args[0], fallback)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", s, int(s))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the approval configuration resolved from the environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(config.ResolveApproval(nil))
	},
}

var (
	memberOrg          string
	memberTeam         string
	memberUser         string
	memberInstallation int64
)

var membershipCmd = &cobra.Command{
	Use:   "membership",
	Short: "Check whether a user may approve alert dismissals",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ghclient.NewFactory(config.LoadGitHub()).Client(memberInstallation)
		if err != nil {
			return err
		}

		team := memberTeam
		if team == "" {
			team = config.ResolveApproval(nil).DefaultTeam
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		outcome := membership.NewOracle(client.Teams, nil, nil).Check(ctx, memberOrg, memberUser, team)
		fmt.Fprintf(cmd.OutOrStdout(), "%s in %s/%s: %s\n", memberUser, memberOrg, team, outcome)
		return nil
	},
}

var (
	evaluateEvent   string
	evaluateFile    string
	evaluateOffline bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Decide a webhook payload without reopening anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := os.ReadFile(evaluateFile)
		if err != nil {
			return fmt.Errorf("error reading payload: %w", err)
		}

		ev, err := events.Parse("alert-check", evaluateEvent, payload)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if ev == nil {
			fmt.Fprintf(out, "%s: ignored\n", events.Describe(evaluateEvent, payload))
			return nil
		}

		var oracle *membership.Oracle
		if !evaluateOffline {
			client, err := ghclient.NewFactory(config.LoadGitHub()).Client(ev.Meta().InstallationID)
			if err != nil {
				return err
			}
			oracle = membership.NewOracle(client.Teams, nil, nil)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		eval, err := policy.NewEngine(nil).Decide(ctx, ev, config.ResolveApproval(nil), oracle)
		if err != nil {
			return err
		}

		meta := ev.Meta()
		fmt.Fprintf(out, "alert:      %s\n", meta.Ref)
		fmt.Fprintf(out, "closed by:  %s\n", meta.Actor)
		fmt.Fprintf(out, "severity:   %s (minimum %s)\n", eval.Severity, eval.Threshold)
		if cs, ok := ev.(*models.CodeScanningDismissal); ok && cs.SecuritySeverity == nil && cs.RuleSeverity != nil {
			fmt.Fprintf(out, "rule level: %s (not a security severity)\n", *cs.RuleSeverity)
		}
		if eval.Gated {
			fmt.Fprintln(out, "membership: not checked, severity below minimum")
		} else {
			fmt.Fprintf(out, "membership: %s in %s\n", eval.Membership, eval.Team)
		}
		if eval.PatternChange {
			fmt.Fprintln(out, "resolution: custom pattern change")
		}
		fmt.Fprintf(out, "decision:   %s\n", eval.Decision)
		return nil
	},
}

func init() {
	severityCmd.Flags().StringVar(&severityFallback, "fallback", "ALL", "severity returned for unrecognized labels")

	membershipCmd.Flags().StringVar(&memberOrg, "org", "", "organization login")
	membershipCmd.Flags().StringVar(&memberTeam, "team", "", "team slug (defaults to SECURITY_ALERT_CLOSE_TEAM)")
	membershipCmd.Flags().StringVar(&memberUser, "user", "", "user login")
	membershipCmd.Flags().Int64Var(&memberInstallation, "installation", 0, "GitHub App installation id")
	_ = membershipCmd.MarkFlagRequired("org")
	_ = membershipCmd.MarkFlagRequired("user")

	evaluateCmd.Flags().StringVar(&evaluateEvent, "event", "", "webhook event name, e.g. dependabot_alert")
	evaluateCmd.Flags().StringVar(&evaluateFile, "file", "", "path to the webhook payload JSON")
	evaluateCmd.Flags().BoolVar(&evaluateOffline, "offline", false, "skip the membership lookup (treated as not approved)")
	_ = evaluateCmd.MarkFlagRequired("event")
	_ = evaluateCmd.MarkFlagRequired("file")
}
