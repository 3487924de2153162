package main

import "tichu/cmd"

func main() {
	cmd.Execute()
}
