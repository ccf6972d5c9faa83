// Command authcore-admin is the administrative CLI for the authcore service.
package main

import "github.com/turtacn/authcore/cmd/cli"

func main() {
	cli.Execute()
}
