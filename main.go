package main

import "facereel/cmd"

func main() {
	cmd.Execute()
}
