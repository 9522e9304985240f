// Command ssocookie is the operator tool for the SSO ticket scheme: mint a
// ticket for testing, verify one a user reports problems with, or inspect
// a ticket's fields without trusting them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
