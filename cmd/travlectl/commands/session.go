package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starrycyq/travle/internal/domain"
	"github.com/urfave/cli/v3"
)

func SessionSaveAction(ctx context.Context, cmd *cli.Command) error {
	var cookies map[string]string
	if err := json.Unmarshal([]byte(cmd.String("cookies")), &cookies); err != nil {
		return fmt.Errorf("--cookies must be a JSON object of strings: %w", err)
	}

	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	sessionID, err := c.SessionService.SaveSession(ctx, cmd.String("subject"), cmd.String("session-id"), cookies)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"session_id": sessionID, "subject": cmd.String("subject")})
}

func SessionLinkAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	if err := c.SessionService.LinkOwner(ctx, cmd.String("owner"), cmd.String("session-id"), cmd.String("subject")); err != nil {
		return err
	}
	fmt.Fprintf(Stdout, "linked %s -> %s\n", cmd.String("owner"), cmd.String("session-id"))
	return nil
}

// SessionShowAction looks a session up by owner, or by subject when --subject is given.
func SessionShowAction(ctx context.Context, cmd *cli.Command) error {
	owner, subject := cmd.String("owner"), cmd.String("subject")
	if owner == "" && subject == "" {
		return fmt.Errorf("one of --owner or --subject is required")
	}

	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	var session *domain.LoginSession
	if owner != "" {
		session, err = c.SessionService.OwnerSession(ctx, owner)
	} else {
		session, err = c.SessionService.SubjectSession(ctx, subject)
	}
	if err != nil {
		return err
	}
	return printJSON(session)
}
