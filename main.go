package main

import "github.com/spotify/snakebite/cmd"

func main() {
	cmd.Execute()
}
