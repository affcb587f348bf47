// devlens answers questions about a developer's activity on GitHub by
// combining semantic retrieval over collected activity records with exact
// statistical aggregation.
package main

import "github.com/devlens-io/devlens/cmd"

func main() {
	cmd.Execute()
}
