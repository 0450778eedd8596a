package main

import "github.com/bloodmagesoftware/xoom/cmd"

func main() {
	cmd.Execute()
}
