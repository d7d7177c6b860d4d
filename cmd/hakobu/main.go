// Command hakobu manages the lifecycle of assets on a remote creative
// platform: submission, status tracking and withdrawal.
package main

import "github.com/rinwao/hakobu/internal/cli"

func main() {
	cli.Execute()
}
