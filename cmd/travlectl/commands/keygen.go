package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/starrycyq/travle/pkg/utils/keygen"
	"github.com/urfave/cli/v3"
)

// KeygenAction prints fresh secrets for the security section of the config.
func KeygenAction(_ context.Context, _ *cli.Command) error {
	encKey, err := keygen.GenerateEncryptionKey()
	if err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	apiKey := strings.ReplaceAll(keygen.GenerateUUID(), "-", "")

	fmt.Fprintf(Stdout, "TRAVLE_SECURITY_ENCRYPTION_KEY=%s\n", encKey)
	fmt.Fprintf(Stdout, "TRAVLE_SECURITY_API_KEY=%s\n", apiKey)
	return nil
}
