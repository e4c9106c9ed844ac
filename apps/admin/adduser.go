package main

import (
	"context"
	"fmt"

	"github.com/madamaths/madamaths/core/account"
)

// addUser creates an account with the given password. It must be changed on first login.
func (cli *commandLine) addUser(na account.NewAccount) error {
	if err := na.Validate(cli.validate); err != nil {
		return err
	}
	acc, err := cli.accSvc.Create(context.Background(), na)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created %s %q (id %d)\n", acc.Role, acc.Identifier(), acc.ID)
	return nil
}
