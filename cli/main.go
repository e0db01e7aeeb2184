package main

import "casevault/cli/cmd"

func main() {
	cmd.Execute()
}
