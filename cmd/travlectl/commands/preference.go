package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"
)

func PreferenceAddAction(ctx context.Context, cmd *cli.Command) error {
	var prefs map[string]interface{}
	if raw := cmd.String("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			return fmt.Errorf("--data must be a JSON object: %w", err)
		}
	}

	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	pref, err := c.PreferenceService.SavePreference(ctx, cmd.String("owner"), cmd.String("destination"), prefs)
	if err != nil {
		return err
	}
	return printJSON(pref)
}

func PreferenceListAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	prefs, err := c.PreferenceService.RecentPreferences(ctx, cmd.String("owner"), cmd.Int("limit"))
	if err != nil {
		return err
	}
	return printJSON(prefs)
}
