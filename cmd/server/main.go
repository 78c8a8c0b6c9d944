package main

import "github.com/sbms-academy/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
