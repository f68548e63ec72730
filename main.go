package main

import "all-me-match/cmd"

func main() {
	cmd.Execute()
}
