package main

import "clipstream/cmd"

func main() {
	cmd.Execute()
}
