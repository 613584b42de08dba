package main

import "stackedwins/cmd"

func main() {
	cmd.Execute()
}
