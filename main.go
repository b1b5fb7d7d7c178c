package main

import "dario.lol/lfiam/cmd"

func main() {
	cmd.Execute()
}
