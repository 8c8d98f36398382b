package main

import "client-tasks.com/client-tasks/cmd"

func main() {
	cmd.Execute()
}
