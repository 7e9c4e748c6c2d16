// Command hilite runs the highlight server and offers one-shot bracket,
// highlight and code block reports on files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
