package main

import "github.com/duggerlink/dugger/cmd"

func main() {
	cmd.Execute()
}
