package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) purge(ctx context.Context) error {
	n, err := cli.purgeSessions(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%d session(s) destroyed\n", n)
	return nil
}
