package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(identifier, pwd string) error {
	acc, err := cli.accSvc.ResetPassword(context.Background(), identifier, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %q reset; it must be changed on next login\n", acc.Identifier())
	return nil
}
