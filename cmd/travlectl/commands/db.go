package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// MigrateAction creates or updates every table and index.
func MigrateAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	fmt.Fprintf(Stdout, "migrations applied (%s)\n", c.Config.Database.Driver)
	return nil
}
