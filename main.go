// The main package for the candidate-summary-api executable.
package main

import (
	"github.com/outstaffer/candidate-summary-api/cmd"
)

func main() {
	cmd.Execute()
}
