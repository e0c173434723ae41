// cmd/formcheck/main.go
//
// Formguard – offline checker for form definitions.
//
//	formcheck list                         List loaded forms.
//	formcheck eval survey name=Sam age=17  Run one submission through a guard.
//	formcheck lint ./forms                 Validate every YAML definition.
//
// Exit status is 1 when a submission is rejected or a definition fails
// lint, so the tool can gate CI.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "formcheck:", err)
		os.Exit(1)
	}
}
