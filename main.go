package main

import "github.com/jsphweid/midiscore/cmd"

func main() {
	cmd.Execute()
}
