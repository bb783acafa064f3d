package main

import "github.com/theirongolddev/pixparcela/cmd"

func main() {
	cmd.Execute()
}
