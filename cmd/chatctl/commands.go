package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"portfolio-chat-api/internal/wire"
	"portfolio-chat-api/pkg/utils"
)

var passagesCmd = &cobra.Command{
	Use:   "passages",
	Short: "Print the knowledge base passages in index order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := wire.InitializeChat(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, p := range svc.Passages() {
			fmt.Fprintf(out, "[%d] (%s) %s\n", i, p.Kind, p.Text)
		}
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <message>",
	Short: "Show the intent a message is classified as",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := wire.InitializeChat(cfg)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), svc.Classify(strings.Join(args, " ")))
		return nil
	},
}

var askTimeout time.Duration

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Answer a message with the same pipeline as POST /v1/chat",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := wire.InitializeChat(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		turn, err := svc.Handle(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(turn)
	},
}

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an operator token for the debug retrieval endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Security.JWT.Secret == "" {
			return errors.New("security.jwt.secret is not set; the debug endpoint is disabled")
		}

		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.Security.JWT.Expiration
		}
		m := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer)
		token, err := m.GenerateToken(tokenSubject, utils.RoleOperator, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 90*time.Second, "overall deadline for the answer")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "operator", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to security.jwt.expiration)")
}
