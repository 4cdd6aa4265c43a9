// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/keyscope/internal/api"
)

// envelope mirrors api.APIResponse with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *api.APIError   `json:"error"`
}

func newAPIClient(flags *globalFlags) *resty.Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(flags.apiURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if flags.token != "" {
		c.SetAuthToken(flags.token)
	}
	return c
}

// call performs the request and unwraps the response envelope.
func call(req *resty.Request, method, path string) (json.RawMessage, error) {
	var env envelope
	resp, err := req.SetResult(&env).SetError(&env).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("%s %s: %s (%s)", method, path, env.Error.Message, env.Error.Code)
		}
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode())
	}
	return env.Data, nil
}

func printRaw(cmd *cobra.Command, data json.RawMessage) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return printJSON(cmd, v)
}

func newKeysCmd(flags *globalFlags) *cobra.Command {
	keysCmd := &cobra.Command{Use: "keys", Short: "Credential pool operations on a running server"}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-credential usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := call(newAPIClient(flags).R().SetContext(cmd.Context()), resty.MethodGet, "/api/v1/keys/status")
			if err != nil {
				return err
			}
			return printRaw(cmd, data)
		},
	}

	addCmd := &cobra.Command{
		Use:   "add KEY",
		Short: "Register a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" {
				return errors.New("key must not be blank")
			}
			req := newAPIClient(flags).R().SetContext(cmd.Context()).
				SetBody(api.AddKeyRequest{APIKey: args[0]})
			data, err := call(req, resty.MethodPost, "/api/v1/keys")
			if err != nil {
				return err
			}
			return printRaw(cmd, data)
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear exhaustion flags on every credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := call(newAPIClient(flags).R().SetContext(cmd.Context()), resty.MethodPost, "/api/v1/keys/reset")
			if err != nil {
				return err
			}
			return printRaw(cmd, data)
		},
	}

	keysCmd.AddCommand(statusCmd, addCmd, resetCmd)
	return keysCmd
}

func newTokenCmd() *cobra.Command {
	var secret, subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := api.NewAdminAuth(secret, true)
			if err != nil {
				return err
			}
			token, err := auth.GenerateToken(subject, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (JWT_SECRET of the server)")
	cmd.Flags().StringVar(&subject, "subject", "keyscopectl", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}
