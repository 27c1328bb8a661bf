package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rinde17/investerra-app/internal/repository/postgres"
	"github.com/Rinde17/investerra-app/internal/service"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage terrain owners",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Register an owner for the HTTP API and print its id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDatabase(a.cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := postgres.New(ctx, a.cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			users := service.NewUserService(postgres.NewUserRepo(db), a.logger)
			user, err := users.Register(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created owner %d (%s), send it as X-Owner-ID\n", user.ID, user.Username)
			return nil
		},
	})

	return cmd
}
