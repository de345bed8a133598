// Command svcspec compiles daemontools service specifications.
package main

import "github.com/axondata/go-svcspec/internal/cli"

func main() {
	cli.Execute()
}
