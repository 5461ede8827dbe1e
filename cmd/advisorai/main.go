// Command advisorai is a terminal client for the AdvisorAI college
// advising assistant.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "advisorai:", err)
		os.Exit(1)
	}
}
