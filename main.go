package main

import "paxos/cmd"

func main() {
	cmd.Execute()
}
