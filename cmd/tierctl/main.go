package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"eagler-tiers/internal/api"
	"eagler-tiers/internal/config"
	"eagler-tiers/internal/constants"
	"eagler-tiers/internal/domain"
	"eagler-tiers/internal/gateway"
	"eagler-tiers/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type cli struct {
	apiURL     string
	actorTag   string
	actorID    string
	actorRoles []string
	admin      bool
	verbose    bool

	member      string
	memberRoles []string

	catalog *config.Catalog
	client  *api.TiersClient
	gateway *gateway.Gateway
	roles   *gateway.MemoryRoleSyncer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "tierctl",
		Short:         "Moderator CLI for the tiers API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "base URL of the tiers API (env API_URL)")
	root.PersistentFlags().StringVar(&c.actorTag, "actor-tag", os.Getenv("USER"), "moderator tag recorded as lastModifiedBy")
	root.PersistentFlags().StringVar(&c.actorID, "actor-id", "", "moderator id recorded as lastModifiedById")
	root.PersistentFlags().StringSliceVar(&c.actorRoles, "actor-roles", nil, "role ids held by the moderator")
	root.PersistentFlags().BoolVar(&c.admin, "admin", false, "act as an administrator")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(c.tiersCmd(), c.setTierCmd(), c.removeTierCmd(), c.resultCmd())
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(logger.Bootstrap())
	if err != nil {
		return err
	}
	log := logger.New(cfg)
	if c.verbose {
		log = logger.SetLevel(zerolog.DebugLevel)
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	catalog, err := config.LoadCatalog(cfg, log)
	if err != nil {
		return err
	}

	c.catalog = catalog
	c.client = api.NewTiersClient(cfg)
	c.roles = gateway.NewMemoryRoleSyncer(log)
	c.gateway = gateway.New(c.client, c.roles, gateway.NewLogNotifier(log), catalog, cfg, log)
	return nil
}

func (c *cli) actor() gateway.Actor {
	return gateway.Actor{ID: c.actorID, Tag: c.actorTag, RoleIDs: c.actorRoles, Administrator: c.admin}
}

func (c *cli) addMemberFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.member, "member", "", "chat member whose tier roles are synced")
	cmd.Flags().StringSliceVar(&c.memberRoles, "member-roles", nil, "roles the member currently holds")
}

func (c *cli) seedMember() {
	if c.member != "" && len(c.memberRoles) > 0 {
		c.roles.Grant(c.member, c.memberRoles...)
	}
}

func (c *cli) tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Print every game mode's tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ExternalAPITimeout)
			defer cancel()

			tiers, err := c.client.GetTiers(ctx)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(domain.Ordered{Tiers: tiers, Order: c.catalog}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func (c *cli) setTierCmd() *cobra.Command {
	var player, gamemode, tier string
	cmd := &cobra.Command{
		Use:   "settier",
		Short: "Set a player's tier in a game mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ExternalAPITimeout)
			defer cancel()

			c.seedMember()
			reply, err := c.gateway.SetTier(ctx, c.actor(), gateway.SetTierCommand{
				Player:   player,
				GameMode: gamemode,
				Tier:     tier,
				MemberID: c.member,
			})
			fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
			return err
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "player name (IGN)")
	cmd.Flags().StringVar(&gamemode, "gamemode", "", "game mode id")
	cmd.Flags().StringVar(&tier, "tier", "", "tier label, e.g. HT3")
	c.addMemberFlags(cmd)
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("gamemode")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}

func (c *cli) removeTierCmd() *cobra.Command {
	var player, gamemode string
	cmd := &cobra.Command{
		Use:   "removetier",
		Short: "Remove a player from every tier of a game mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ExternalAPITimeout)
			defer cancel()

			c.seedMember()
			reply, err := c.gateway.RemoveTier(ctx, c.actor(), gateway.RemoveTierCommand{
				Player:   player,
				GameMode: gamemode,
				MemberID: c.member,
			})
			fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
			return err
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "player name (IGN)")
	cmd.Flags().StringVar(&gamemode, "gamemode", "", "game mode id")
	c.addMemberFlags(cmd)
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("gamemode")
	return cmd
}

func (c *cli) resultCmd() *cobra.Command {
	var player, gamemode, tier string
	cmd := &cobra.Command{
		Use:   "result",
		Short: "Post a public test result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.ExternalAPITimeout)
			defer cancel()

			reply, err := c.gateway.PostResult(ctx, c.actor(), gateway.ResultCommand{
				Player:   player,
				GameMode: gamemode,
				Tier:     tier,
			})
			fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
			return err
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "player name (IGN)")
	cmd.Flags().StringVar(&gamemode, "gamemode", "", "game mode id")
	cmd.Flags().StringVar(&tier, "tier", "", "tier the player achieved")
	_ = cmd.MarkFlagRequired("player")
	_ = cmd.MarkFlagRequired("gamemode")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}
