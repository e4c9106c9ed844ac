package main

import (
	"context"
	"fmt"

	"github.com/madamaths/madamaths/core/account"
)

// setActive toggles an account. The operator is not an account, so self-deactivation does not apply.
func (cli *commandLine) setActive(identifier string, active bool) error {
	ctx := context.Background()
	acc, err := cli.accSvc.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if acc, err = cli.accSvc.SetActive(ctx, account.Account{}, acc.ID, active); err != nil {
		return err
	}
	state := "disabled"
	if acc.IsActive {
		state = "enabled"
	}
	fmt.Fprintf(cli.out, "%q %s\n", acc.Identifier(), state)
	return nil
}
