// Command interopctl drives browser interop components from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/GriffinCanCode/webinterop/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
