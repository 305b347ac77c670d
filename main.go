package main

import "github.com/relloyd/aorist/cmd"

func main() {
	cmd.Execute()
}
