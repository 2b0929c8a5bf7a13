package main

import "github.com/send2-name/delegate2name-api/cmd"

func main() {
	cmd.Execute()
}
