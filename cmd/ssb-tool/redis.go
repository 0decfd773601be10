package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssbops/ssb-build-server/pkg/catalog"
)

func newRedisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redis",
		Short: "Check or repair the Redis catalog cache",
	}

	pf := cmd.PersistentFlags()
	pf.String("addr", "localhost:6379", "Redis address")
	pf.String("password", "", "Redis password")
	pf.Int("db", 0, "Redis database number")

	check := &cobra.Command{
		Use:   "check",
		Short: "Verify Redis connectivity and snapshot health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := cacheFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = cache.Close()
			}()

			if err := cache.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("redis unreachable: %w", err)
			}
			fmt.Println("redis: ok")

			if _, err := cache.Get(cmd.Context()); err != nil {
				if errors.Is(err, catalog.ErrCacheMiss) {
					fmt.Println("catalog snapshot: absent")
					return nil
				}
				return fmt.Errorf("catalog snapshot unreadable (run 'ssb-tool redis repair'): %w", err)
			}
			fmt.Println("catalog snapshot: ok")
			return nil
		},
	}

	repair := &cobra.Command{
		Use:   "repair",
		Short: "Drop a corrupt catalog snapshot so it gets rebuilt",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := cacheFromFlags(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = cache.Close()
			}()

			if err := cache.Repair(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("catalog snapshot dropped")
			return nil
		},
	}

	cmd.AddCommand(check, repair)
	return cmd
}

func cacheFromFlags(cmd *cobra.Command) (*catalog.Cache, error) {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return nil, err
	}
	password, _ := cmd.Flags().GetString("password")
	db, _ := cmd.Flags().GetInt("db")
	return catalog.NewCache(addr, password, db, time.Minute), nil
}
