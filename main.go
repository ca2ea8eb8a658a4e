package main

import "github.com/hattrick/sportsbook/cmd"

func main() {
	cmd.Execute()
}
