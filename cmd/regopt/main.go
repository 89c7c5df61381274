// Command regopt compiles regular expressions into optimized bytecode,
// inspects the optimizer passes, runs matches and generates Go source.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
